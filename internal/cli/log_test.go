package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/labelpress/pkg/pipeline"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "rendered label at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("Rendered label", "name", "type-1") },
			wantLog: true,
		},
		{
			name:    "cache lookup hidden at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("label served from cache") },
			wantLog: false,
		},
		{
			name:    "cache lookup shown with --verbose",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("label served from cache") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func labelResult(w, h int, cached bool) *pipeline.Result {
	return &pipeline.Result{
		Stats:     pipeline.Stats{Width: w, Height: h, Bytes: 1024},
		CacheInfo: pipeline.CacheInfo{RenderHit: cached},
	}
}

func TestProgressLabel(t *testing.T) {
	tests := []struct {
		name   string
		cached bool
		want   []string
	}{
		{"fresh", false, []string{"Rendered label", "name=type-1", "size=591x354", "bytes=1024", "cached=false", "elapsed="}},
		{"from cache", true, []string{"Rendered label", "cached=true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			newProgress(newLogger(&buf, log.InfoLevel)).label("type-1", labelResult(591, 354, tt.cached))

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output %q missing %q", out, w)
				}
			}
		})
	}
}

func TestProgressBatch(t *testing.T) {
	results := []*pipeline.Result{
		labelResult(591, 354, true),
		labelResult(591, 354, false),
		labelResult(591, 354, false),
	}

	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).batch("type-2", results)

	out := buf.String()
	for _, w := range []string{"Rendered 3 labels", "template=type-2", "cached=1", "fresh=2"} {
		if !strings.Contains(out, w) {
			t.Errorf("output %q missing %q", out, w)
		}
	}
}

func TestProgressBatchEmpty(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).batch("type-2", nil)

	if out := buf.String(); !strings.Contains(out, "Rendered 0 labels") || !strings.Contains(out, "fresh=0") {
		t.Errorf("output %q, want an empty batch summary", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	tests := []struct {
		name string
		ctx  context.Context
		want *log.Logger
	}{
		{"attached", withLogger(context.Background(), custom), custom},
		{"missing", context.Background(), log.Default()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loggerFromContext(tt.ctx); got != tt.want {
				t.Errorf("loggerFromContext() = %p, want %p", got, tt.want)
			}
		})
	}
}
