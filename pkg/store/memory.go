package store

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/matzehuels/labelpress/pkg/schema"
)

// MemoryStore keeps templates and instances in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	templates map[string]schema.Template
	instances map[string]Instance
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[string]schema.Template),
		instances: make(map[string]Instance),
	}
}

func (s *MemoryStore) GetTemplate(ctx context.Context, id string) (*schema.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok {
		return nil, templateNotFound(id)
	}
	return &t, nil
}

func (s *MemoryStore) ListTemplates(ctx context.Context) ([]schema.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]schema.Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	sortTemplates(out)
	return out, nil
}

func (s *MemoryStore) SaveTemplate(ctx context.Context, t *schema.Template) error {
	if err := prepareTemplate(t, time.Now().UTC()); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.templates[t.ID]; ok {
		t.CreatedAt = prev.CreatedAt
	}
	s.templates[t.ID] = *t
	return nil
}

func (s *MemoryStore) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.templates[id]; !ok {
		return templateNotFound(id)
	}
	delete(s.templates, id)
	return nil
}

func (s *MemoryStore) SaveInstance(ctx context.Context, inst *Instance) error {
	if err := prepareInstance(inst); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *inst
	stored.Data = maps.Clone(inst.Data)
	s.instances[inst.ID] = stored
	return nil
}

func (s *MemoryStore) GetInstance(ctx context.Context, id string) (*Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.instances[id]
	if !ok {
		return nil, instanceNotFound(id)
	}
	inst.Data = maps.Clone(inst.Data)
	return &inst, nil
}

func (s *MemoryStore) ListInstances(ctx context.Context, templateID string) ([]Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Instance
	for _, inst := range s.instances {
		if templateID != "" && inst.TemplateID != templateID {
			continue
		}
		inst.Data = maps.Clone(inst.Data)
		out = append(out, inst)
	}
	sortInstances(out)
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
