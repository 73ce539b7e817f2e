// Package render composites label layouts into raster images.
//
// # Overview
//
// A [Renderer] merges a [schema.Schema] with a [Data] mapping at a physical
// [Target] size and resolution:
//
//	r := render.New(render.Options{
//	    Fonts:  fonts.New(cfg.FontPath, logger),
//	    Assets: asset.NewResolver(fetcher, 5*time.Second, logger),
//	    Logger: logger,
//	})
//	img, err := r.Render(ctx, layout, render.Target{WidthMM: 50, HeightMM: 30, DPI: 300}, data)
//	png, err := render.EncodePNG(img)
//
// # Drawing Rules
//
// The canvas is MMToPx(width) × MMToPx(height), opaque white. Elements are
// drawn strictly in schema order, so later elements cover earlier ones.
// Coordinates are canvas pixels; anything past the edge is clipped.
//
//   - text: data[dataKey] if non-empty, else the element's literal value,
//     drawn in black with its top-left corner at (x, y). No wrapping.
//   - image: data[dataKey] is resolved as an asset and scaled to (w, h);
//     missing or failing images become the gray "IMG" placeholder.
//   - barcode: data[dataKey], else data["sku"], else "CODE". Falls back to
//     EAN-13 and then to an error raster, never failing the render.
//   - qrcode: same value chain ending in "QR". A payload no QR version can
//     hold fails the render with ENCODE_FAILED.
//   - unknown element types are skipped.
//
// # Errors
//
// Render fails only for an invalid target (INVALID_TARGET), a canvas over
// [Options.MaxCanvasPixels] (RESOURCE_EXHAUSTED), a QR encode failure
// (ENCODE_FAILED), or a cancelled context.
//
// A Renderer holds no per-render state and is safe for concurrent use.
package render
