// Package pipeline runs the label production pipeline shared by the CLI
// and the HTTP API.
//
// # Architecture
//
// A run has three stages:
//
//  1. Render: composite the layout with the label's data
//  2. Encode: produce PNG bytes
//  3. Persist: write the PNG under the output directory and record an
//     instance in the store (template runs only)
//
// Stages 1 and 2 are cached together: the PNG bytes are stored under a key
// derived from the schema, the target and the data, so an identical request
// is served without drawing.
//
// # Usage
//
//	runner := pipeline.NewRunner(renderer, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Schema: s,
//	    Target: render.Target{WidthMM: 50, HeightMM: 30, DPI: 300},
//	    Data:   render.Data{"sku": "W-1"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("label.png", result.PNG, 0o644)
//
// Template runs also persist:
//
//	runner.Store = store.NewMemoryStore()
//	runner.OutputDir = "out"
//	result, err := runner.ExecuteTemplate(ctx, tmpl, data)
//	fmt.Println(result.Instance.PNGPath) // out/labels/instances/<id>.png
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/labelpress/pkg/cache"
	"github.com/matzehuels/labelpress/pkg/render"
	"github.com/matzehuels/labelpress/pkg/schema"
	"github.com/matzehuels/labelpress/pkg/store"
)

const (
	// DefaultConcurrency bounds the rows rendered at once by Batch.
	DefaultConcurrency = 4

	// InstancesDir is where instance PNGs are written, relative to the
	// output directory.
	InstancesDir = "labels/instances"
)

// Options describes one label render.
type Options struct {
	Schema schema.Schema `json:"schema"`
	Target render.Target `json:"target"`
	Data   render.Data   `json:"data,omitempty"`

	// Refresh skips the artifact cache lookup. The result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Validate checks the target and fills runtime defaults.
func (o *Options) Validate() error {
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o.Target.Validate()
}

// SchemaHash is the content hash of the layout, independent of its
// source encoding.
func (o *Options) SchemaHash() string {
	data, _ := json.Marshal(o.Schema.Document())
	return cache.Hash(data)
}

// ArtifactKeyOpts returns cache key options for the PNG of this render.
func (o *Options) ArtifactKeyOpts(font string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		WidthMM:  o.Target.WidthMM,
		HeightMM: o.Target.HeightMM,
		DPI:      o.Target.DPI,
		Data:     o.Data,
		Font:     font,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// PNG is the encoded label.
	PNG []byte

	// SchemaHash is the content hash of the rendered layout.
	SchemaHash string

	// Instance is the stored record of a template run, nil otherwise.
	Instance *store.Instance

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the PNG came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Elements   int
	Width      int
	Height     int
	RenderTime time.Duration
	EncodeTime time.Duration
	Bytes      int
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether the PNG came from cache
}
