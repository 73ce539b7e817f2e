package asset

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// DefaultTimeout bounds a single resolve, retries included.
const DefaultTimeout = 5 * time.Second

var errNilImage = errors.New("fetcher returned no image")

// Placeholder colors.
var (
	PlaceholderFill   = color.NRGBA{R: 240, G: 240, B: 240, A: 255}
	PlaceholderBorder = color.NRGBA{R: 180, G: 180, B: 180, A: 255}
	PlaceholderText   = color.NRGBA{R: 120, G: 120, B: 120, A: 255}
)

// Resolver fetches images under a deadline and scales them to a box.
// It is safe for concurrent use if its fetcher is.
type Resolver struct {
	fetcher Fetcher
	timeout time.Duration
	logger  *log.Logger
}

// NewResolver returns a resolver. A nil fetcher resolves every reference
// to the placeholder; a non-positive timeout selects [DefaultTimeout].
func NewResolver(fetcher Fetcher, timeout time.Duration, logger *log.Logger) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{fetcher: fetcher, timeout: timeout, logger: logger}
}

// Resolve returns ref scaled to w×h with Lanczos resampling. ok is false
// when the placeholder was returned instead.
func (r *Resolver) Resolve(ctx context.Context, ref string, w, h int) (img *image.NRGBA, ok bool) {
	w, h = max(w, 1), max(h, 1)
	if ref == "" || r.fetcher == nil {
		return Placeholder(w, h), false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	src, err := r.fetcher.Fetch(ctx, ref)
	if err == nil && src == nil {
		err = errNilImage
	}
	if err != nil {
		r.logger.Warn("asset unavailable, using placeholder", "ref", ref, "err", err)
		return Placeholder(w, h), false
	}
	return imaging.Resize(src, w, h, imaging.Lanczos), true
}

// Placeholder draws the w×h stand-in for a missing image: a light gray
// box with a one-pixel border and "IMG" at (6,6).
func Placeholder(w, h int) *image.NRGBA {
	w, h = max(w, 1), max(h, 1)
	fw, fh := float64(w), float64(h)

	dc := gg.NewContext(w, h)
	dc.SetColor(PlaceholderFill)
	dc.Clear()

	dc.SetColor(PlaceholderBorder)
	dc.DrawRectangle(0, 0, fw, 1)
	dc.DrawRectangle(0, fh-1, fw, 1)
	dc.DrawRectangle(0, 0, 1, fh)
	dc.DrawRectangle(fw-1, 0, 1, fh)
	dc.Fill()

	dc.SetColor(PlaceholderText)
	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawStringAnchored("IMG", 6, 6, 0, 1)

	return imaging.Clone(dc.Image())
}
