package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
)

// Schema is an ordered, read-only list of elements. Order is paint order:
// later elements draw over earlier ones where they overlap.
type Schema struct {
	elements []Element
}

// New builds a schema from exchange specs, applying element defaults.
func New(specs []ElementSpec) Schema {
	elements := make([]Element, len(specs))
	for i, spec := range specs {
		elements[i] = newElement(spec, i)
	}
	return Schema{elements: elements}
}

// FromDocument builds a schema from a decoded document.
func FromDocument(doc Document) Schema {
	return New(doc.Elements)
}

// Elements returns a copy of the element list in paint order.
func (s Schema) Elements() []Element {
	return slices.Clone(s.elements)
}

// Len returns the number of elements, including unsupported ones.
func (s Schema) Len() int { return len(s.elements) }

// Document converts the schema back into its exchange shape.
func (s Schema) Document() Document {
	specs := make([]ElementSpec, len(s.elements))
	for i, e := range s.elements {
		specs[i] = specOf(e)
	}
	return Document{Elements: specs}
}

// MarshalJSON encodes the schema in its {"elements": [...]} form.
func (s Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Document())
}

// UnmarshalJSON decodes a schema with the same rules as [Parse].
func (s *Schema) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Parse decodes a JSON schema. The input must be an object with an
// "elements" array or a bare array of elements; null and {} yield an empty
// schema. Anything else fails with INVALID_SCHEMA.
func Parse(data []byte) (Schema, error) {
	specs, err := decodeJSON(data)
	if err != nil {
		return Schema{}, err
	}
	return New(specs), nil
}

// ParseYAML decodes a YAML schema with the same shape rules as [Parse].
func ParseYAML(data []byte) (Schema, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Schema{}, lperrors.Wrap(lperrors.ErrCodeInvalidSchema, err, "decode yaml")
	}
	if len(root.Content) == 0 {
		return Schema{}, nil
	}
	specs, err := decodeYAML(root.Content[0])
	if err != nil {
		return Schema{}, err
	}
	return New(specs), nil
}

// LoadSchema reads a schema file. Files ending in .yaml or .yml are decoded
// as YAML, everything else as JSON.
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read schema %s: %w", path, err)
	}
	var s Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err = ParseYAML(data)
	default:
		s, err = Parse(data)
	}
	if err != nil {
		return Schema{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// UnmarshalJSON accepts both the {"elements": [...]} form and a bare list.
func (d *Document) UnmarshalJSON(data []byte) error {
	specs, err := decodeJSON(data)
	if err != nil {
		return err
	}
	d.Elements = specs
	return nil
}

// UnmarshalYAML accepts both the elements mapping and a bare sequence.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	specs, err := decodeYAML(node)
	if err != nil {
		return err
	}
	d.Elements = specs
	return nil
}

func decodeJSON(data []byte) ([]ElementSpec, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, lperrors.New(lperrors.ErrCodeInvalidSchema, "schema is empty")
	}

	var specs []ElementSpec
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &specs); err != nil {
			return nil, lperrors.Wrap(lperrors.ErrCodeInvalidSchema, err, "decode elements")
		}
	case '{':
		var doc struct {
			Elements json.RawMessage `json:"elements"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, lperrors.Wrap(lperrors.ErrCodeInvalidSchema, err, "decode schema")
		}
		elems := bytes.TrimSpace(doc.Elements)
		if len(elems) == 0 || bytes.Equal(elems, []byte("null")) {
			return nil, nil
		}
		if elems[0] != '[' {
			return nil, lperrors.New(lperrors.ErrCodeInvalidSchema, "elements must be a list")
		}
		if err := json.Unmarshal(elems, &specs); err != nil {
			return nil, lperrors.Wrap(lperrors.ErrCodeInvalidSchema, err, "decode elements")
		}
	default:
		if bytes.Equal(trimmed, []byte("null")) {
			return nil, nil
		}
		return nil, lperrors.New(lperrors.ErrCodeInvalidSchema, "schema must be an object or a list")
	}
	return specs, nil
}

func decodeYAML(node *yaml.Node) ([]ElementSpec, error) {
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, nil
		}
		node = node.Content[0]
	}

	var specs []ElementSpec
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&specs); err != nil {
			return nil, lperrors.Wrap(lperrors.ErrCodeInvalidSchema, err, "decode elements")
		}
	case yaml.MappingNode:
		var doc struct {
			Elements yaml.Node `yaml:"elements"`
		}
		if err := node.Decode(&doc); err != nil {
			return nil, lperrors.Wrap(lperrors.ErrCodeInvalidSchema, err, "decode schema")
		}
		switch {
		case doc.Elements.Kind == 0 || isYAMLNull(&doc.Elements):
			return nil, nil
		case doc.Elements.Kind != yaml.SequenceNode:
			return nil, lperrors.New(lperrors.ErrCodeInvalidSchema, "elements must be a list")
		}
		if err := doc.Elements.Decode(&specs); err != nil {
			return nil, lperrors.Wrap(lperrors.ErrCodeInvalidSchema, err, "decode elements")
		}
	default:
		if isYAMLNull(node) {
			return nil, nil
		}
		return nil, lperrors.New(lperrors.ErrCodeInvalidSchema, "schema must be a mapping or a list")
	}
	return specs, nil
}

func isYAMLNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}
