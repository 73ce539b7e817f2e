// Package schema defines the label layout schema: an ordered list of
// positioned elements that a renderer paints onto a fixed-size canvas.
//
// # Elements
//
// An [Element] is one of a closed set of variants:
//
//   - [Text]: a string drawn at (X, Y) with a pixel font size
//   - [Image]: a raster asset fetched by reference and fitted to (W, H)
//   - [Barcode]: a Code128 (EAN-13 fallback) symbol fitted to (W, H)
//   - [QRCode]: a QR symbol fitted to (W, H)
//   - [Unsupported]: any other type; kept for positional stability and skipped
//
// Defaults are applied once at parse time: X and Y default to 0, W to 80,
// H to 20, FontSize to 12. DataKey is trimmed; a blank key means the element
// has no data binding.
//
// # Wire format
//
// Schemas are exchanged as JSON (or YAML with the same shape):
//
//	{"elements": [
//	  {"id": "pname", "type": "text", "x": 100, "y": 10, "w": 220, "h": 20,
//	   "fontSize": 14, "dataKey": "product_name"}
//	]}
//
// A bare array of elements is accepted as well. Any other top-level value is
// rejected with an INVALID_SCHEMA error before anything is drawn.
//
// # Templates
//
// A [Template] binds a schema to a physical size and resolution. Templates
// load from JSON, YAML or TOML files via [LoadTemplate], and [Premade]
// returns the built-in starter templates.
package schema
