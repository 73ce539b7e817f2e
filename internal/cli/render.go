package cli

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/labelpress/pkg/fields"
	"github.com/matzehuels/labelpress/pkg/pipeline"
	"github.com/matzehuels/labelpress/pkg/render"
	"github.com/matzehuels/labelpress/pkg/schema"
)

const (
	defaultWidthMM  = 50.0 // default label width
	defaultHeightMM = 30.0 // default label height
	defaultDPI      = 300  // default print resolution
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output PNG path
	template string   // template file or stored template ID
	widthMM  float64  // label width in millimetres
	heightMM float64  // label height in millimetres
	dpi      float64  // dots per inch
	data     []string // key=value pairs
	dataFile string   // JSON or YAML object of label data
	refresh  bool     // bypass the label cache
}

// renderCommand creates the render command for rendering a single label.
//
// The layout comes either from a schema file argument or from --template.
// Template dimensions apply unless --width-mm, --height-mm or --dpi are set.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		widthMM:  defaultWidthMM,
		heightMM: defaultHeightMM,
		dpi:      defaultDPI,
	}

	cmd := &cobra.Command{
		Use:   "render [schema-file]",
		Short: "Render a label layout to PNG",
		Long: `Render a label layout (JSON or YAML schema) merged with data to a PNG file.

Data values come from --data key=value flags and --data-file (a flat JSON or
YAML object). Flags override the file.`,
		Example: `  labelpress render layout.json --data title="Hello" -o hello.png
  labelpress render --template type-2 --data sku=ABC-123
  labelpress render --template shipping.json --data-file row.yaml --dpi 600`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if input == "" && opts.template == "" {
				return fmt.Errorf("either a schema file or --template is required")
			}
			if input != "" && opts.template != "" {
				return fmt.Errorf("a schema file and --template are mutually exclusive")
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runRender(ctx, cmd, input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.png)")
	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "template file or stored template ID")
	cmd.Flags().Float64Var(&opts.widthMM, "width-mm", opts.widthMM, "label width in millimetres")
	cmd.Flags().Float64Var(&opts.heightMM, "height-mm", opts.heightMM, "label height in millimetres")
	cmd.Flags().Float64Var(&opts.dpi, "dpi", opts.dpi, "resolution in dots per inch")
	cmd.Flags().StringArrayVarP(&opts.data, "data", "d", nil, "data value as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.dataFile, "data-file", "", "JSON or YAML file with data values")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached labels")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	data, err := collectData(opts.dataFile, opts.data)
	if err != nil {
		return err
	}

	var (
		s      schema.Schema
		target = render.Target{WidthMM: opts.widthMM, HeightMM: opts.heightMM, DPI: opts.dpi}
		name   = input
	)
	if input != "" {
		if s, err = schema.LoadSchema(input); err != nil {
			return err
		}
	} else {
		st, err := c.newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		tmpl, err := resolveTemplate(ctx, st, opts.template)
		if err != nil {
			return err
		}
		s = tmpl.Layout()
		target = mergeTarget(render.TargetOf(*tmpl), target, cmd)
		maps.Copy(data, fields.PrepareData(s, data))
		name = tmpl.ID
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(logger)
	res, err := runner.Execute(ctx, pipeline.Options{
		Schema:  s,
		Target:  target,
		Data:    data,
		Refresh: opts.refresh,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	prog.label(name, res)

	out := opts.output
	if out == "" {
		out = outputPath(name)
	}
	if err := writeFile(out, res.PNG); err != nil {
		return err
	}

	printSuccess("Rendered %s", StyleHighlight.Render(name))
	printFile(out)
	printStats(res.Stats, res.CacheInfo.RenderHit)
	return nil
}

// mergeTarget starts from the template's target and applies the size flags
// the user set explicitly.
func mergeTarget(base, flags render.Target, cmd *cobra.Command) render.Target {
	if cmd.Flags().Changed("width-mm") {
		base.WidthMM = flags.WidthMM
	}
	if cmd.Flags().Changed("height-mm") {
		base.HeightMM = flags.HeightMM
	}
	if cmd.Flags().Changed("dpi") {
		base.DPI = flags.DPI
	}
	return base
}

// outputPath derives "<name>.png" from an input path or template ID.
func outputPath(name string) string {
	base := filepath.Base(name)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." {
		base = "label"
	}
	return base + ".png"
}
