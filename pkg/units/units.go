// Package units converts between physical label dimensions and raster pixels.
//
// All conversions go through inches: one inch is 25.4 millimeters, and a
// resolution in dots per inch (DPI) fixes how many pixels cover one inch.
//
// # Rounding
//
// [MMToPx] rounds half away from zero (math.Round). On the non-negative
// domain used for label sizes this is plain round-half-up, so 0.5px becomes
// 1px and 590.55px becomes 591px. The rule is part of the pixel-exact output
// contract: a 50×30mm label at 300 DPI is always 591×354 pixels.
package units

import "math"

// MMPerInch is the number of millimeters in one inch.
const MMPerInch = 25.4

// MaxPx bounds the result of [MMToPx].
const MaxPx = math.MaxInt32

// MMToPx converts a length in millimeters to whole pixels at dpi.
// Results saturate at ±MaxPx; NaN converts to 0.
func MMToPx(mm, dpi float64) int {
	px := math.Round(mm * dpi / MMPerInch)
	switch {
	case math.IsNaN(px):
		return 0
	case px > MaxPx:
		return MaxPx
	case px < -MaxPx:
		return -MaxPx
	}
	return int(px)
}

// PxToMM converts a pixel count back to millimeters at dpi.
// It returns 0 for a non-positive dpi.
func PxToMM(px int, dpi float64) float64 {
	if dpi <= 0 {
		return 0
	}
	return float64(px) * MMPerInch / dpi
}
