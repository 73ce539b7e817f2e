package render

import (
	"testing"

	"github.com/matzehuels/labelpress/pkg/schema"
)

func TestTargetPixels(t *testing.T) {
	tests := []struct {
		target Target
		w, h   int
	}{
		{Target{WidthMM: 50, HeightMM: 30, DPI: 300}, 591, 354},
		{Target{WidthMM: 25.4, HeightMM: 25.4, DPI: 300}, 300, 300},
		{Target{WidthMM: 50, HeightMM: 50, DPI: 203}, 400, 400},
	}

	for _, tt := range tests {
		w, h := tt.target.Pixels()
		if w != tt.w || h != tt.h {
			t.Errorf("%+v.Pixels() = %dx%d, want %dx%d", tt.target, w, h, tt.w, tt.h)
		}
	}
}

func TestTargetOf(t *testing.T) {
	got := TargetOf(schema.Template{WidthMM: 50, HeightMM: 30, DPI: 300})
	if want := (Target{WidthMM: 50, HeightMM: 30, DPI: 300}); got != want {
		t.Errorf("TargetOf() = %+v, want %+v", got, want)
	}
}

func TestDataFirst(t *testing.T) {
	d := Data{"code_value": "", "sku": "SKU-1", "": "ignored"}

	tests := []struct {
		keys []string
		want string
	}{
		{[]string{"code_value", "sku"}, "SKU-1"},
		{[]string{"", "missing"}, "CODE"},
		{nil, "CODE"},
	}
	for _, tt := range tests {
		if got := d.first("CODE", tt.keys...); got != tt.want {
			t.Errorf("first(%q) = %q, want %q", tt.keys, got, tt.want)
		}
	}
}
