package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/labelpress/pkg/schema"
)

// FileStore is a file-based store for CLI use.
// Templates and instances are stored as JSON files under a base directory:
//
//	<base>/templates/<id>.json
//	<base>/instances/<id>.json
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to ~/.config/labelpress/store/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "labelpress", "store")
	}
	for _, sub := range []string{"templates", "instances"} {
		if err := os.MkdirAll(filepath.Join(baseDir, sub), 0o700); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) templatePath(id string) string {
	return filepath.Join(s.baseDir, "templates", id+".json")
}

func (s *FileStore) instancePath(id string) string {
	return filepath.Join(s.baseDir, "instances", id+".json")
}

func (s *FileStore) GetTemplate(ctx context.Context, id string) (*schema.Template, error) {
	if !safeName(id) {
		return nil, templateNotFound(id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var t schema.Template
	if err := readJSON(s.templatePath(id), &t); err != nil {
		if os.IsNotExist(err) {
			return nil, templateNotFound(id)
		}
		return nil, err
	}
	return &t, nil
}

func (s *FileStore) ListTemplates(ctx context.Context) ([]schema.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []schema.Template
	err := s.scan("templates", func(path string) error {
		var t schema.Template
		if err := readJSON(path, &t); err != nil {
			return err
		}
		out = append(out, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortTemplates(out)
	return out, nil
}

func (s *FileStore) SaveTemplate(ctx context.Context, t *schema.Template) error {
	if err := prepareTemplate(t, time.Now().UTC()); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var prev schema.Template
	if err := readJSON(s.templatePath(t.ID), &prev); err == nil {
		t.CreatedAt = prev.CreatedAt
	}
	return writeJSON(s.templatePath(t.ID), t)
}

func (s *FileStore) DeleteTemplate(ctx context.Context, id string) error {
	if !safeName(id) {
		return templateNotFound(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.templatePath(id)); err != nil {
		if os.IsNotExist(err) {
			return templateNotFound(id)
		}
		return fmt.Errorf("remove template file: %w", err)
	}
	return nil
}

func (s *FileStore) SaveInstance(ctx context.Context, inst *Instance) error {
	if err := prepareInstance(inst); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.instancePath(inst.ID), inst)
}

func (s *FileStore) GetInstance(ctx context.Context, id string) (*Instance, error) {
	if !safeName(id) {
		return nil, instanceNotFound(id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var inst Instance
	if err := readJSON(s.instancePath(id), &inst); err != nil {
		if os.IsNotExist(err) {
			return nil, instanceNotFound(id)
		}
		return nil, err
	}
	return &inst, nil
}

func (s *FileStore) ListInstances(ctx context.Context, templateID string) ([]Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Instance
	err := s.scan("instances", func(path string) error {
		var inst Instance
		if err := readJSON(path, &inst); err != nil {
			return err
		}
		if templateID == "" || inst.TemplateID == templateID {
			out = append(out, inst)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortInstances(out)
	return out, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory of the store.
func (s *FileStore) Path() string {
	return s.baseDir
}

// scan calls fn for every JSON file in a subdirectory.
func (s *FileStore) scan(sub string, fn func(path string) error) error {
	dir := filepath.Join(s.baseDir, sub)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s dir: %w", sub, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := fn(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// safeName rejects IDs that could escape the store directory.
func safeName(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.ContainsAny(id, `/\`+"\x00")
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSON writes v through a temp file and rename so readers never see
// a partial document.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
