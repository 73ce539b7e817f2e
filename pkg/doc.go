// Package pkg provides the core libraries for Labelpress label rendering.
//
// # Overview
//
// Labelpress turns a label layout (an ordered list of text, image, barcode
// and QR code elements on a fixed-size canvas) plus a map of per-label data
// into a raster image. The pkg directory is organized into these areas:
//
//  1. [schema] - Layout elements, templates and premade layouts
//  2. [fields] - Field discovery, data preparation and CSV exchange
//  3. [render] - The compositor, with [symbol], [fonts], [asset] and [units]
//  4. [pipeline] - Orchestration (render → encode → cache → persist)
//  5. [store], [cache] - Template and instance storage, asset and label caching
//  6. [server] - The HTTP API
//
// # Architecture
//
// The typical data flow through Labelpress:
//
//	Layout (JSON/YAML) + data row
//	         ↓
//	    [schema] package (parse, apply defaults)
//	         ↓
//	    [fields] package (discover inputs, fill code_value)
//	         ↓
//	    [render] package (composite onto an opaque canvas)
//	         ↓
//	    PNG bytes → [cache] and [store]
//
// # Quick Start
//
// Render a premade template:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/labelpress/pkg/pipeline"
//	    "github.com/matzehuels/labelpress/pkg/schema"
//	)
//
//	tmpl, _ := schema.PremadeByID("type-2")
//	runner := pipeline.NewRunner(nil, nil, nil, nil)
//	res, err := runner.ExecuteTemplate(context.Background(), tmpl, map[string]string{
//	    "product_name": "Widget",
//	    "sku":          "W-100",
//	})
//	// res.PNG holds the encoded label
//
// # Error Handling
//
// Errors carry a code from [errors] (INVALID_SCHEMA, INVALID_TARGET,
// ENCODE_FAILED, ...). Use errors.Is(err, code) to branch on them; the
// HTTP API maps codes to status codes.
package pkg
