package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestProviderSource(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "regular.ttf")
	bad := filepath.Join(dir, "broken.ttf")
	if err := os.WriteFile(good, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("not a font"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"embedded", "", SourceEmbedded},
		{"file", good, good},
		{"missing file", filepath.Join(dir, "missing.ttf"), SourceEmbedded},
		{"corrupt file", bad, SourceEmbedded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.path, nil).Source(); got != tt.want {
				t.Errorf("Source() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFaceScalesWithSize(t *testing.T) {
	p := Default()
	small := p.Face(10).Metrics().Height
	large := p.Face(40).Metrics().Height

	if large <= small {
		t.Errorf("Face(40) height %v not larger than Face(10) height %v", large, small)
	}
}

func TestFaceFallback(t *testing.T) {
	p := Default()
	for _, size := range []int{0, -3} {
		if got := p.Face(size); got != Fallback {
			t.Errorf("Face(%d) = %T, want the bitmap fallback", size, got)
		}
	}
}
