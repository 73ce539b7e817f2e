// Package symbol generates the machine-readable symbols placed on labels.
//
// # Barcodes
//
// [BarcodeGenerator.Generate] never fails. It tries Code 128 first; if the
// payload cannot be encoded it falls back to EAN-13 built from the payload's
// digits (or all zeros for non-numeric payloads), and if that fails too it
// returns a white raster reading "BARCODE ERR". The [Result] reports which
// of the three happened:
//
//	res := symbol.Barcode("SKU-0042", 140, 60)
//	if res.Symbology == symbol.SymbologyPlaceholder {
//	    log.Warn("barcode degraded", "err", res.Err)
//	}
//
// # QR codes
//
// [QRGenerator.Generate] encodes at Medium error correction with the
// smallest version that fits, 10px modules and a one-module quiet zone.
// Unlike barcodes, a payload that does not fit any QR version is an
// ENCODE_FAILED error.
//
// All outputs are resampled with a Lanczos filter to exactly the requested
// box, so callers can composite them without further scaling.
package symbol
