package pipeline

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/labelpress/pkg/cache"
	"github.com/matzehuels/labelpress/pkg/errors"
	"github.com/matzehuels/labelpress/pkg/fields"
	"github.com/matzehuels/labelpress/pkg/observability"
	"github.com/matzehuels/labelpress/pkg/render"
	"github.com/matzehuels/labelpress/pkg/schema"
	"github.com/matzehuels/labelpress/pkg/store"
)

const artifactKeyType = "label"

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so that caching and persistence behave the same.
//
// The Runner holds no per-run state. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Renderer *render.Renderer
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger

	// Store records instances of template runs. Nil disables recording.
	Store store.Store

	// OutputDir receives instance PNGs under InstancesDir. Empty disables
	// writing files.
	OutputDir string

	// Concurrency bounds Batch. Zero selects DefaultConcurrency.
	Concurrency int

	// Progress, when set, is called after each Batch row completes.
	// It may be called from several goroutines.
	Progress func(done, total int)
}

// NewRunner creates a runner with the given renderer, cache and keyer.
// If renderer is nil, a renderer with default options is used.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(renderer *render.Renderer, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	if renderer == nil {
		renderer = render.New(render.Options{Logger: logger})
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Runner{
		Renderer: renderer,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
	}
}

// Execute renders and encodes one label, serving it from the cache when an
// identical render was stored before.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	w, h := opts.Target.Pixels()
	result := &Result{
		SchemaHash: opts.SchemaHash(),
		Stats:      Stats{Elements: opts.Schema.Len(), Width: w, Height: h},
	}
	key := r.Keyer.ArtifactKey(result.SchemaHash, opts.ArtifactKeyOpts(r.Renderer.FontSource()))
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			hooks.OnCacheHit(ctx, artifactKeyType)
			result.PNG = data
			result.Stats.Bytes = len(data)
			result.CacheInfo.RenderHit = true
			opts.Logger.Debug("label served from cache", "schema", short(result.SchemaHash))
			return result, nil
		} else if err != nil {
			opts.Logger.Debug("label cache read failed", "err", err)
		}
		hooks.OnCacheMiss(ctx, artifactKeyType)
	}

	// Stage 1: Render
	renderStart := time.Now()
	img, err := r.Renderer.Render(ctx, opts.Schema, opts.Target, opts.Data)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Stats.RenderTime = time.Since(renderStart)

	// Stage 2: Encode
	encodeStart := time.Now()
	data, err := render.EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	result.PNG = data
	result.Stats.EncodeTime = time.Since(encodeStart)
	result.Stats.Bytes = len(data)

	opts.Logger.Info("rendered label",
		"elements", result.Stats.Elements,
		"size", fmt.Sprintf("%dx%d", w, h),
		"duration", result.Stats.RenderTime+result.Stats.EncodeTime)

	if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err != nil {
		opts.Logger.Debug("label cache write failed", "err", err)
	} else {
		hooks.OnCacheSet(ctx, artifactKeyType, len(data))
	}
	return result, nil
}

// ExecuteTemplate renders tmpl with input, then persists the label: the PNG
// is written under OutputDir and an instance is recorded in Store.
// Input is completed with [fields.PrepareData] first, so code_value always
// has a payload.
func (r *Runner) ExecuteTemplate(ctx context.Context, tmpl schema.Template, input map[string]string) (*Result, error) {
	layout := tmpl.Layout()
	data := maps.Clone(input)
	if data == nil {
		data = make(map[string]string)
	}
	maps.Copy(data, fields.PrepareData(layout, input))

	result, err := r.Execute(ctx, Options{
		Schema: layout,
		Target: render.TargetOf(tmpl),
		Data:   data,
	})
	if err != nil {
		return nil, err
	}

	inst := store.NewInstance(tmpl.ID, data)
	if r.OutputDir != "" {
		path, err := r.writeInstancePNG(inst.ID, result.PNG)
		if err != nil {
			return nil, err
		}
		inst.PNGPath = path
	}
	if r.Store != nil {
		if err := r.Store.SaveInstance(ctx, inst); err != nil {
			return nil, fmt.Errorf("save instance: %w", err)
		}
	}
	result.Instance = inst
	return result, nil
}

// Batch runs ExecuteTemplate for every row in parallel, bounded by
// Concurrency. Results keep row order. The first failure cancels the
// remaining rows and is returned with its 1-based row number.
func (r *Runner) Batch(ctx context.Context, tmpl schema.Template, rows []map[string]string) ([]*Result, error) {
	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]*Result, len(rows))
	var completed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, row := range rows {
		g.Go(func() error {
			res, err := r.ExecuteTemplate(ctx, tmpl, row)
			if err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			results[i] = res
			if r.Progress != nil {
				r.Progress(int(completed.Add(1)), len(rows))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r.Logger.Info("batch complete", "template", tmpl.ID, "labels", len(rows))
	return results, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (r *Runner) writeInstancePNG(id string, data []byte) (string, error) {
	dir := filepath.Join(r.OutputDir, filepath.FromSlash(InstancesDir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "create instance dir")
	}
	path := filepath.Join(dir, id+".png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return path, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
