// Package fonts provides the font faces used to draw label text.
//
// A [Provider] loads one TrueType/OpenType font (from a configured path or
// the embedded Go Regular font) and hands out faces per pixel size. Faces
// returned by [Provider.Face] are fresh values and must not be shared
// between goroutines; the parsed font itself is shared.
//
// Loading never fails from the caller's point of view: an unreadable path
// falls back to Go Regular, and a size that cannot be instantiated falls
// back to the built-in 7x13 bitmap face.
package fonts

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// SourceEmbedded is reported by [Provider.Source] when no path is in use.
const SourceEmbedded = "embedded:goregular"

// Fallback is the face used when a sized face cannot be created.
var Fallback font.Face = basicfont.Face7x13

// Provider loads a font once and creates faces on demand.
// It is safe for concurrent use.
type Provider struct {
	path   string
	logger *log.Logger

	once   sync.Once
	font   *opentype.Font
	source string
}

// New returns a provider for the font at path. An empty path selects the
// embedded Go Regular font. logger may be nil.
func New(path string, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Provider{path: path, logger: logger}
}

// Default returns a provider for the embedded font.
func Default() *Provider {
	return New("", nil)
}

func (p *Provider) load() {
	p.once.Do(func() {
		if p.path != "" {
			f, err := parseFile(p.path)
			if err == nil {
				p.font, p.source = f, p.path
				return
			}
			p.logger.Warn("font unavailable, using embedded font", "path", p.path, "err", err)
		}

		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			p.logger.Error("embedded font unreadable, using bitmap face", "err", err)
			p.source = "basicfont"
			return
		}
		p.font, p.source = f, SourceEmbedded
	})
}

// Source names the font in use: the configured path, [SourceEmbedded], or
// "basicfont" when no outline font could be parsed.
func (p *Provider) Source() string {
	p.load()
	return p.source
}

// Face returns a face rendering at size pixels. It never returns nil.
func (p *Provider) Face(size int) font.Face {
	p.load()
	if p.font == nil || size <= 0 {
		return Fallback
	}

	face, err := opentype.NewFace(p.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		p.logger.Debug("sized face unavailable, using bitmap face", "size", size, "err", err)
		return Fallback
	}
	return face
}

func parseFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}
