// Package cli implements the labelpress command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/labelpress/pkg/asset"
	"github.com/matzehuels/labelpress/pkg/buildinfo"
	"github.com/matzehuels/labelpress/pkg/cache"
	"github.com/matzehuels/labelpress/pkg/config"
	"github.com/matzehuels/labelpress/pkg/fonts"
	"github.com/matzehuels/labelpress/pkg/pipeline"
	"github.com/matzehuels/labelpress/pkg/render"
	"github.com/matzehuels/labelpress/pkg/schema"
	"github.com/matzehuels/labelpress/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Labelpress renders label layouts to PNG",
		Long:          `Labelpress merges label layouts (text, image, barcode and QR elements on a fixed-size canvas) with per-label data and renders them to raster images.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/labelpress/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the asset and label cache")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.fieldsCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.templatesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "store", c.storeLabel())
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The caller must Close it.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	keyer := c.newKeyer()
	runner := pipeline.NewRunner(c.newRenderer(ch, keyer), ch, keyer, c.Logger)
	runner.Concurrency = c.cfg.Concurrency
	runner.OutputDir = c.cfg.OutputDir
	return runner, nil
}

// newRenderer wires fonts and assets from the config. Remote assets are
// cached in ch; local references resolve under the asset root.
func (c *CLI) newRenderer(ch cache.Cache, keyer cache.Keyer) *render.Renderer {
	timeout := c.cfg.Render.FetchTimeout
	root := c.cfg.Render.AssetRoot
	if root == "" {
		root = "."
	}
	fetcher := asset.Router{
		Remote: asset.NewCachedFetcher(asset.NewHTTPFetcher(timeout), ch, keyer, c.Logger),
		Local:  asset.NewFileFetcher(root),
	}
	return render.New(render.Options{
		Fonts:           fonts.New(c.cfg.Render.Font, c.Logger),
		Assets:          asset.NewResolver(fetcher, timeout, c.Logger),
		MaxCanvasPixels: c.cfg.Render.MaxCanvasPixels,
		Logger:          c.Logger,
	})
}

// newKeyer scopes cache keys by cache.namespace when it is set.
func (c *CLI) newKeyer() cache.Keyer {
	keyer := cache.NewDefaultKeyer()
	if ns := c.cfg.Cache.Namespace; ns != "" {
		return cache.NewScopedKeyer(keyer, ns+":")
	}
	return keyer
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache || c.cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if c.cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.cfg.Redis.Addr,
			Password: c.cfg.Redis.Password,
			DB:       c.cfg.Redis.DB,
			Prefix:   c.cfg.Redis.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	}
	dir := c.cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// newStore opens MongoDB when configured, else the file store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	if c.cfg.Mongo.URI != "" {
		ms, err := store.NewMongoStore(ctx, store.MongoConfig{URI: c.cfg.Mongo.URI, Database: c.cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	fs, err := store.NewFileStore(c.cfg.Store.Dir)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func (c *CLI) storeLabel() string {
	if c.cfg.Mongo.URI != "" {
		return "mongo"
	}
	return "file"
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/labelpress/).
func cacheDir() (string, error) {
	return config.CacheDir()
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// resolveTemplate loads a template from a file path, or by ID from st with
// the premade templates as a fallback when st does not have it.
func resolveTemplate(ctx context.Context, st store.Store, ref string) (*schema.Template, error) {
	if fi, err := os.Stat(ref); err == nil && !fi.IsDir() {
		t, err := schema.LoadTemplate(ref)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	if st != nil {
		t, err := st.GetTemplate(ctx, ref)
		if err == nil {
			return t, nil
		}
		if p, ok := schema.PremadeByID(ref); ok {
			return &p, nil
		}
		return nil, err
	}
	if p, ok := schema.PremadeByID(ref); ok {
		return &p, nil
	}
	return nil, fmt.Errorf("template %q not found", ref)
}

// parseAssignments parses repeated key=value flags. Values may contain '='.
func parseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid data %q (want key=value)", p)
		}
		out[k] = v
	}
	return out, nil
}

// readDataFile reads a flat JSON or YAML object of label data.
func readDataFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string]string
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}

// collectData merges a data file with key=value flags; flags win.
func collectData(file string, pairs []string) (map[string]string, error) {
	data := make(map[string]string)
	if file != "" {
		fromFile, err := readDataFile(file)
		if err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			data[k] = v
		}
	}
	fromFlags, err := parseAssignments(pairs)
	if err != nil {
		return nil, err
	}
	for k, v := range fromFlags {
		data[k] = v
	}
	return data, nil
}
