package render

import (
	"math"

	"github.com/matzehuels/labelpress/pkg/errors"
	"github.com/matzehuels/labelpress/pkg/schema"
	"github.com/matzehuels/labelpress/pkg/units"
)

// Target is the physical size and resolution of a render.
type Target struct {
	WidthMM  float64 `json:"width_mm"`
	HeightMM float64 `json:"height_mm"`
	DPI      float64 `json:"dpi"`
}

// TargetOf returns the target described by a template.
func TargetOf(t schema.Template) Target {
	return Target{WidthMM: t.WidthMM, HeightMM: t.HeightMM, DPI: float64(t.DPI)}
}

// Validate requires finite, positive width, height and DPI.
func (t Target) Validate() error {
	if !finite(t.WidthMM) || !finite(t.HeightMM) || !finite(t.DPI) {
		return errors.New(errors.ErrCodeInvalidTarget, "label size and dpi must be finite, got %gx%gmm at %g dpi",
			t.WidthMM, t.HeightMM, t.DPI)
	}
	if t.WidthMM <= 0 || t.HeightMM <= 0 {
		return errors.New(errors.ErrCodeInvalidTarget, "label size must be positive, got %gx%gmm", t.WidthMM, t.HeightMM)
	}
	if t.DPI <= 0 {
		return errors.New(errors.ErrCodeInvalidTarget, "dpi must be positive, got %g", t.DPI)
	}
	return nil
}

// Pixels returns the canvas size.
func (t Target) Pixels() (w, h int) {
	return units.MMToPx(t.WidthMM, t.DPI), units.MMToPx(t.HeightMM, t.DPI)
}

// canvas returns the pixel size of a valid target, refusing canvases of
// less than one pixel or more than maxPixels. The area is computed in
// float64 so it cannot wrap.
func (t Target) canvas(maxPixels int) (w, h int, err error) {
	fw := math.Round(t.WidthMM * t.DPI / units.MMPerInch)
	fh := math.Round(t.HeightMM * t.DPI / units.MMPerInch)
	if fw < 1 || fh < 1 {
		return 0, 0, errors.New(errors.ErrCodeInvalidTarget, "label %gx%gmm at %g dpi is smaller than one pixel",
			t.WidthMM, t.HeightMM, t.DPI)
	}
	if fw*fh > float64(maxPixels) {
		return 0, 0, errors.New(errors.ErrCodeResourceExhausted, "canvas %.0fx%.0f exceeds %d pixels", fw, fh, maxPixels)
	}
	return int(fw), int(fh), nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// Data maps data keys to values for one label.
type Data map[string]string

// lookup returns d[key] when key is set and the value non-empty.
func (d Data) lookup(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	v, ok := d[key]
	return v, ok && v != ""
}

// first returns the first non-empty value among keys, else fallback.
func (d Data) first(fallback string, keys ...string) string {
	for _, k := range keys {
		if v, ok := d.lookup(k); ok {
			return v
		}
	}
	return fallback
}
