package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/labelpress/pkg/fields"
	"github.com/matzehuels/labelpress/pkg/pipeline"
)

// batchOpts holds the command-line flags for the batch command.
type batchOpts struct {
	template  string // template file or stored template ID
	outputDir string // overrides output_dir from the config
}

// batchCommand creates the batch command, which renders one label per CSV
// row and records each as an instance.
func (c *CLI) batchCommand() *cobra.Command {
	var opts batchOpts

	cmd := &cobra.Command{
		Use:   "batch <rows.csv>",
		Short: "Render one label per CSV row",
		Long: `Render one label per row of a CSV file using a template.

The first CSV row names the fields (see "labelpress fields --csv"). Each label
is written to <output-dir>/labels/instances/<id>.png and recorded in the store.`,
		Example: `  labelpress batch --template type-2 products.csv
  labelpress batch --template shipping.json rows.csv --output-dir ./out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.template == "" {
				return fmt.Errorf("--template is required")
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runBatch(ctx, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "template file or stored template ID")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "directory for rendered labels (default: config output_dir)")

	return cmd
}

func (c *CLI) runBatch(ctx context.Context, input string, opts *batchOpts) error {
	logger := loggerFromContext(ctx)

	f, err := os.Open(input)
	if err != nil {
		return err
	}
	rows, err := fields.ReadRows(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	if len(rows) == 0 {
		printWarning("%s has no data rows", input)
		return nil
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return err
	}
	defer runner.Close()

	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	runner.Store = st

	tmpl, err := resolveTemplate(ctx, st, opts.template)
	if err != nil {
		return err
	}
	if opts.outputDir != "" {
		runner.OutputDir = opts.outputDir
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d labels...", len(rows)))
	runner.Progress = func(done, total int) {
		spinner.SetMessage(fmt.Sprintf("Rendering %d/%d labels...", done, total))
	}
	spinner.Start()

	prog := newProgress(logger)
	results, err := runner.Batch(ctx, *tmpl, rows)
	if err != nil {
		spinner.StopWithError("Batch failed")
		return err
	}
	spinner.Stop()
	prog.batch(tmpl.ID, results)

	printSuccess("Rendered %s labels from %s", StyleNumber.Render(fmt.Sprint(len(results))), StyleHighlight.Render(tmpl.ID))
	printFile(filepath.Join(runner.OutputDir, filepath.FromSlash(pipeline.InstancesDir)))
	printDetail("%d cached · %d fresh", countCached(results), len(results)-countCached(results))
	return nil
}

func countCached(results []*pipeline.Result) int {
	n := 0
	for _, r := range results {
		if r.CacheInfo.RenderHit {
			n++
		}
	}
	return n
}
