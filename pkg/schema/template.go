package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
)

// TemplateKind distinguishes shipped templates from user-designed ones.
type TemplateKind string

const (
	TemplatePremade TemplateKind = "PREMADE"
	TemplateCustom  TemplateKind = "CUSTOM"
)

// Template defaults for a new label.
const (
	DefaultWidthMM  = 50.0
	DefaultHeightMM = 30.0
	DefaultDPI      = 300
)

// Template is a named label layout with its physical size.
type Template struct {
	ID        string       `json:"id" yaml:"id" toml:"id" bson:"_id"`
	Name      string       `json:"name" yaml:"name" toml:"name" bson:"name"`
	Kind      TemplateKind `json:"kind" yaml:"kind" toml:"kind" bson:"kind"`
	WidthMM   float64      `json:"width_mm" yaml:"width_mm" toml:"width_mm" bson:"width_mm"`
	HeightMM  float64      `json:"height_mm" yaml:"height_mm" toml:"height_mm" bson:"height_mm"`
	DPI       int          `json:"dpi" yaml:"dpi" toml:"dpi" bson:"dpi"`
	Schema    Document     `json:"schema" yaml:"schema" toml:"schema" bson:"schema"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at,omitempty" toml:"created_at,omitempty" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" yaml:"updated_at,omitempty" toml:"updated_at,omitempty" bson:"updated_at"`
}

// SetDefaults fills zero-valued size, resolution and kind.
func (t *Template) SetDefaults() {
	if t.Kind == "" {
		t.Kind = TemplateCustom
	}
	if t.WidthMM <= 0 {
		t.WidthMM = DefaultWidthMM
	}
	if t.HeightMM <= 0 {
		t.HeightMM = DefaultHeightMM
	}
	if t.DPI <= 0 {
		t.DPI = DefaultDPI
	}
}

// Validate checks the identifier, kind and physical size.
func (t Template) Validate() error {
	if err := lperrors.ValidateTemplateID(t.ID); err != nil {
		return err
	}
	switch t.Kind {
	case TemplatePremade, TemplateCustom:
	default:
		return lperrors.New(lperrors.ErrCodeInvalidInput, "unknown template kind %q", t.Kind)
	}
	if t.WidthMM <= 0 || t.HeightMM <= 0 || t.DPI <= 0 {
		return lperrors.New(lperrors.ErrCodeInvalidTarget,
			"template %s has invalid size %gx%gmm@%d", t.ID, t.WidthMM, t.HeightMM, t.DPI)
	}
	return nil
}

// Layout returns the template's schema with element defaults applied.
func (t Template) Layout() Schema {
	return FromDocument(t.Schema)
}

// Format names a template file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf picks a format from a file extension, defaulting to JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// ReadTemplate decodes a template from r and applies defaults.
func ReadTemplate(r io.Reader, format Format) (Template, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Template{}, fmt.Errorf("read: %w", err)
	}

	var t Template
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &t)
	case FormatTOML:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&t)
	default:
		err = json.Unmarshal(data, &t)
	}
	if err != nil {
		if lperrors.GetCode(err) != "" {
			return Template{}, err
		}
		return Template{}, lperrors.Wrap(lperrors.ErrCodeInvalidSchema, err, "decode %s template", format)
	}

	t.SetDefaults()
	return t, nil
}

// LoadTemplate reads a template file. The format follows the extension.
// A template without an ID takes the file's base name.
func LoadTemplate(path string) (Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return Template{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadTemplate(f, FormatOf(path))
	if err != nil {
		return Template{}, fmt.Errorf("%s: %w", path, err)
	}
	if t.ID == "" {
		t.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return t, nil
}

// WriteTemplate encodes t as indented JSON.
func WriteTemplate(t Template, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
