// Package cli implements the labelpress command-line interface.
//
// Commands render label layouts to PNG, list the fields a layout asks for,
// fill layouts from CSV rows or interactive prompts, manage stored
// templates, and serve the HTTP API. The CLI is built using cobra and logs
// through charmbracelet/log.
//
// # Commands
//
//   - render: Render a layout or template to a PNG file
//   - fields: List the data fields of a layout, optionally as a CSV header
//   - batch: Render one label per CSV row
//   - generate: Prompt for field values and render a single label
//   - templates: List, show, import, delete and seed stored templates
//   - serve: Run the HTTP API
//   - cache: Manage the asset and label cache
//
// # Configuration
//
// Settings come from $XDG_CONFIG_HOME/labelpress/config.toml (or --config)
// with LABELPRESS_* environment overrides. See package config.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/labelpress/pkg/pipeline"
)

// newLogger returns a logger writing to w at level, with "15:04:05.00"
// timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a render command and logs what it produced.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// label logs one finished label with its canvas size and cache outcome.
func (p *progress) label(name string, res *pipeline.Result) {
	p.logger.Info("Rendered label",
		"name", name,
		"size", fmt.Sprintf("%dx%d", res.Stats.Width, res.Stats.Height),
		"bytes", res.Stats.Bytes,
		"cached", res.CacheInfo.RenderHit,
		"elapsed", p.elapsed())
}

// batch logs a finished batch run. Fresh labels are those rendered in this
// run rather than served from the cache.
func (p *progress) batch(template string, results []*pipeline.Result) {
	cached := countCached(results)
	p.logger.Info(fmt.Sprintf("Rendered %d labels", len(results)),
		"template", template,
		"cached", cached,
		"fresh", len(results)-cached,
		"elapsed", p.elapsed())
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
