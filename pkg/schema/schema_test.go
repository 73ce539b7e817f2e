package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	lperrors "github.com/matzehuels/labelpress/pkg/errors"
)

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{"object", `{"elements":[{"type":"text"},{"type":"qrcode"}]}`, 2, false},
		{"bare array", `[{"type":"text"}]`, 1, false},
		{"empty object", `{}`, 0, false},
		{"null elements", `{"elements":null}`, 0, false},
		{"null", `null`, 0, false},
		{"empty array", `[]`, 0, false},

		{"empty input", ``, 0, true},
		{"string", `"elements"`, 0, true},
		{"number", `42`, 0, true},
		{"elements object", `{"elements":{"type":"text"}}`, 0, true},
		{"elements string", `{"elements":"text"}`, 0, true},
		{"float coordinate", `[{"type":"text","x":1.5}]`, 0, true},
		{"truncated", `{"elements":[`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !lperrors.Is(err, lperrors.ErrCodeInvalidSchema) {
					t.Errorf("Parse(%q) error code = %q, want INVALID_SCHEMA", tt.input, lperrors.GetCode(err))
				}
				return
			}
			if s.Len() != tt.wantLen {
				t.Errorf("Parse(%q).Len() = %d, want %d", tt.input, s.Len(), tt.wantLen)
			}
		})
	}
}

func TestParseDefaults(t *testing.T) {
	s, err := Parse([]byte(`{"elements":[
		{"id":"a","type":"text"},
		{"id":"b","type":"image","x":-5,"y":-1,"w":0,"h":-3,"dataKey":"  logo  "},
		{"id":"c","type":"text","fontSize":0,"value":"hi"},
		{"id":"d","type":"widget","x":3}
	]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []Element{
		Text{Frame: Frame{ID: "a", W: 80, H: 20, Index: 0}, FontSize: 12},
		Image{Frame: Frame{ID: "b", W: 80, H: 20, DataKey: "logo", Index: 1}},
		Text{Frame: Frame{ID: "c", W: 80, H: 20, Index: 2}, FontSize: 12, Value: "hi"},
		Unsupported{Frame: Frame{ID: "d", X: 3, W: 80, H: 20, Index: 3}, Type: "widget"},
	}
	if diff := cmp.Diff(want, s.Elements()); diff != "" {
		t.Errorf("Elements() mismatch (-want +got):\n%s", diff)
	}
}

func TestElementsReturnsCopy(t *testing.T) {
	s, err := Parse([]byte(`[{"type":"text","value":"a"},{"type":"text","value":"b"}]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	els := s.Elements()
	els[0] = els[1]

	if got := s.Elements()[0].(Text).Value; got != "a" {
		t.Errorf("schema mutated through Elements(): first value = %q, want %q", got, "a")
	}
}

func TestParseYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{"mapping", "elements:\n  - type: text\n    x: 4\n  - type: barcode\n", 2, false},
		{"sequence", "- type: qrcode\n", 1, false},
		{"empty", "", 0, false},
		{"null elements", "elements: ~\n", 0, false},

		{"scalar", "hello\n", 0, true},
		{"elements mapping", "elements:\n  type: text\n", 0, true},
		{"float size", "- type: text\n  w: 2.5\n", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseYAML([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseYAML(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && s.Len() != tt.wantLen {
				t.Errorf("ParseYAML(%q).Len() = %d, want %d", tt.input, s.Len(), tt.wantLen)
			}
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	in := `{"elements":[{"id":"t","type":"text","x":10,"y":5,"w":100,"h":20,"fontSize":14,"dataKey":"name","value":"x"},{"id":"q","type":"qrcode","dataKey":"code"}]}`
	s, err := Parse([]byte(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(round trip): %v", err)
	}
	if diff := cmp.Diff(s.Elements(), again.Elements()); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestLoadSchema(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "layout.json")
	yamlPath := filepath.Join(dir, "layout.yml")
	if err := os.WriteFile(jsonPath, []byte(`[{"type":"text"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte("elements:\n  - type: image\n  - type: text\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if s, err := LoadSchema(jsonPath); err != nil || s.Len() != 1 {
		t.Errorf("LoadSchema(json) = %d elements, %v; want 1, nil", s.Len(), err)
	}
	if s, err := LoadSchema(yamlPath); err != nil || s.Len() != 2 {
		t.Errorf("LoadSchema(yaml) = %d elements, %v; want 2, nil", s.Len(), err)
	}
	if _, err := LoadSchema(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("LoadSchema(missing) error = nil, want error")
	}
}
