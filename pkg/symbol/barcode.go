package symbol

import (
	"image"
	"image/color"
	"strings"
	"unicode"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Symbology names the encoding a barcode result ended up with.
type Symbology string

const (
	SymbologyCode128     Symbology = "code128"
	SymbologyEAN13       Symbology = "ean13"
	SymbologyPlaceholder Symbology = "placeholder"
)

// Native raster geometry before the final resample.
const (
	moduleWidth  = 3  // px per narrow bar
	quietModules = 10 // light modules on each side
	barHeight    = 60 // px
	captionSpace = 18 // px below the bars for the human-readable line
)

// Encoder turns a payload into a one-dimensional symbol.
type Encoder func(payload string) (barcode.Barcode, error)

// Code128 encodes payload as Code 128.
func Code128(payload string) (barcode.Barcode, error) {
	return code128.Encode(payload)
}

// EAN13 encodes a 13-digit string as EAN-13. The check digit is recomputed
// from the first twelve digits.
func EAN13(payload string) (barcode.Barcode, error) {
	if len(payload) > 12 {
		payload = payload[:12]
	}
	return ean.Encode(payload)
}

// Result is the outcome of a barcode generation.
type Result struct {
	Image     *image.NRGBA
	Symbology Symbology
	Payload   string // content actually encoded; empty for the placeholder
	Err       error  // why the last encoder failed, set for the placeholder
}

// Degraded reports whether the payload was not encoded as given.
func (r Result) Degraded() bool { return r.Symbology != SymbologyCode128 }

// BarcodeGenerator renders barcodes with a Code 128 to EAN-13 fallback chain.
// A zero value uses the default encoders.
type BarcodeGenerator struct {
	Code128 Encoder
	EAN13   Encoder
}

var defaultBarcodes BarcodeGenerator

// Barcode renders payload into a w×h raster using the default encoders.
func Barcode(payload string, w, h int) Result {
	return defaultBarcodes.Generate(payload, w, h)
}

// Generate renders payload into a w×h raster.
func (g BarcodeGenerator) Generate(payload string, w, h int) Result {
	w, h = max(w, 1), max(h, 1)

	primary := g.Code128
	if primary == nil {
		primary = Code128
	}
	fallback := g.EAN13
	if fallback == nil {
		fallback = EAN13
	}

	if bc, err := primary(payload); err == nil {
		return Result{Image: rasterize(bc, w, h), Symbology: SymbologyCode128, Payload: bc.Content()}
	}

	bc, err := fallback(EANPayload(payload))
	if err == nil {
		return Result{Image: rasterize(bc, w, h), Symbology: SymbologyEAN13, Payload: bc.Content()}
	}

	return Result{Image: errorRaster(w, h), Symbology: SymbologyPlaceholder, Err: err}
}

// EANPayload derives the 13-digit EAN fallback string: an all-digit payload
// truncated or right-padded with '0', anything else all zeros.
func EANPayload(payload string) string {
	if payload == "" || strings.IndexFunc(payload, func(r rune) bool { return r > unicode.MaxASCII || !unicode.IsDigit(r) }) >= 0 {
		return "0000000000000"
	}
	if len(payload) >= 13 {
		return payload[:13]
	}
	return payload + strings.Repeat("0", 13-len(payload))
}

// rasterize draws bc at native resolution with a quiet zone and caption,
// then resamples to w×h.
func rasterize(bc barcode.Barcode, w, h int) *image.NRGBA {
	modules := bc.Bounds().Dx()
	width := (modules + 2*quietModules) * moduleWidth
	height := barHeight + captionSpace

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)

	origin := bc.Bounds().Min
	for i := 0; i < modules; i++ {
		if !isDark(bc.At(origin.X+i, origin.Y)) {
			continue
		}
		x := float64((quietModules + i) * moduleWidth)
		dc.DrawRectangle(x, 0, moduleWidth, barHeight)
	}
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawStringAnchored(bc.Content(), float64(width)/2, barHeight+2, 0.5, 1)

	return imaging.Resize(dc.Image(), w, h, imaging.Lanczos)
}

// errorRaster is the white "BARCODE ERR" box used when no encoder succeeds.
func errorRaster(w, h int) *image.NRGBA {
	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetColor(color.Black)
	dc.SetFontFace(basicfont.Face7x13)
	dc.DrawStringAnchored("BARCODE ERR", 4, 4, 0, 1)
	return imaging.Clone(dc.Image())
}

func isDark(c color.Color) bool {
	return color.GrayModel.Convert(c).(color.Gray).Y < 128
}
