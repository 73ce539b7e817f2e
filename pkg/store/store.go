// Package store persists label templates and the instances rendered from
// them.
//
// Implementations are provided for different backends:
//   - [MemoryStore]: in-process maps for tests and the HTTP server without a database
//   - [FileStore]: JSON files under a directory, the CLI default
//   - [MongoStore]: MongoDB collections for shared deployments
//
// All implementations return a NOT_FOUND coded error (see pkg/errors) for
// unknown IDs and validate templates before writing them.
package store

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
	"github.com/matzehuels/labelpress/pkg/schema"
)

// Instance records one rendered label: which template and data produced it
// and where its PNG was written.
type Instance struct {
	ID         string            `json:"id" bson:"_id"`
	TemplateID string            `json:"template_id" bson:"template_id"`
	Data       map[string]string `json:"data" bson:"data"`
	PNGPath    string            `json:"png_path,omitempty" bson:"png_path,omitempty"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at"`
}

// NewInstance returns an instance with a fresh random ID.
func NewInstance(templateID string, data map[string]string) *Instance {
	return &Instance{
		ID:         uuid.NewString(),
		TemplateID: templateID,
		Data:       data,
		CreatedAt:  time.Now().UTC(),
	}
}

// Store is the interface for template and instance storage backends.
type Store interface {
	// GetTemplate returns the template with the given ID.
	GetTemplate(ctx context.Context, id string) (*schema.Template, error)

	// ListTemplates returns all templates, premade first, then by ID.
	ListTemplates(ctx context.Context) ([]schema.Template, error)

	// SaveTemplate validates and upserts t, stamping its timestamps.
	SaveTemplate(ctx context.Context, t *schema.Template) error

	// DeleteTemplate removes a template. Its instances are kept.
	DeleteTemplate(ctx context.Context, id string) error

	// SaveInstance records a rendered label.
	SaveInstance(ctx context.Context, inst *Instance) error

	// GetInstance returns the instance with the given ID.
	GetInstance(ctx context.Context, id string) (*Instance, error)

	// ListInstances returns the instances of a template, oldest first.
	// An empty templateID lists all instances.
	ListInstances(ctx context.Context, templateID string) ([]Instance, error)

	// Close releases backend resources.
	Close() error
}

// Seed writes the premade templates into s, replacing existing copies.
// It returns the number of templates written.
func Seed(ctx context.Context, s Store) (int, error) {
	n := 0
	for _, t := range schema.Premade() {
		if err := s.SaveTemplate(ctx, &t); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// prepareTemplate applies defaults, validates and stamps t before a write.
// CreatedAt is kept when already set.
func prepareTemplate(t *schema.Template, now time.Time) error {
	if t == nil {
		return lperrors.New(lperrors.ErrCodeInvalidInput, "nil template")
	}
	t.SetDefaults()
	if err := t.Validate(); err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return nil
}

func prepareInstance(inst *Instance) error {
	if inst == nil {
		return lperrors.New(lperrors.ErrCodeInvalidInput, "nil instance")
	}
	if inst.ID == "" {
		inst.ID = uuid.NewString()
	}
	if _, err := uuid.Parse(inst.ID); err != nil {
		return lperrors.Wrap(lperrors.ErrCodeInvalidInput, err, "instance id %q", inst.ID)
	}
	if err := lperrors.ValidateTemplateID(inst.TemplateID); err != nil {
		return err
	}
	if inst.CreatedAt.IsZero() {
		inst.CreatedAt = time.Now().UTC()
	}
	return nil
}

func sortTemplates(ts []schema.Template) {
	slices.SortFunc(ts, func(a, b schema.Template) int {
		if a.Kind != b.Kind {
			if a.Kind == schema.TemplatePremade {
				return -1
			}
			if b.Kind == schema.TemplatePremade {
				return 1
			}
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func sortInstances(is []Instance) {
	slices.SortFunc(is, func(a, b Instance) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func templateNotFound(id string) error {
	return lperrors.New(lperrors.ErrCodeNotFound, "template %q not found", id)
}

func instanceNotFound(id string) error {
	return lperrors.New(lperrors.ErrCodeNotFound, "instance %q not found", id)
}
