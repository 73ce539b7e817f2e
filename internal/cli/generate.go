package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"github.com/matzehuels/labelpress/pkg/fields"
	"github.com/matzehuels/labelpress/pkg/schema"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	template string   // template file or stored template ID
	set      []string // key=value answers that skip their prompt
}

// generateCommand creates the generate command: pick a template, answer a
// prompt per field, and render one label instance.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fill in a template interactively and render one label",
		Long: `Prompt for each data field of a template and render one label.

Without --template, an interactive picker lists the stored and premade
templates. Fields given with --set are not prompted for. The label is
written to <output_dir>/labels/instances/<id>.png and recorded in the store.`,
		Example: `  labelpress generate
  labelpress generate --template type-2 --set sku=ABC-123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runGenerate(ctx, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "template file or stored template ID")
	cmd.Flags().StringArrayVar(&opts.set, "set", nil, "field value as key=value (repeatable)")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts *generateOpts) error {
	preset, err := parseAssignments(opts.set)
	if err != nil {
		return err
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

	var tmpl *schema.Template
	if opts.template != "" {
		if tmpl, err = resolveTemplate(ctx, st, opts.template); err != nil {
			return err
		}
	} else {
		list, err := st.ListTemplates(ctx)
		if err != nil {
			return err
		}
		if tmpl, err = pickTemplate(mergePremade(list)); err != nil {
			return err
		}
		if tmpl == nil {
			printInfo("No template selected")
			return nil
		}
	}

	data, err := promptFields(fields.Discover(tmpl.Layout()), preset)
	if err != nil {
		if err == terminal.InterruptErr {
			return context.Canceled
		}
		return err
	}

	res, err := runner.ExecuteTemplate(ctx, *tmpl, data)
	if err != nil {
		return err
	}

	printSuccess("Generated label %s", StyleHighlight.Render(res.Instance.ID))
	if res.Instance.PNGPath != "" {
		printFile(res.Instance.PNGPath)
	}
	printStats(res.Stats, res.CacheInfo.RenderHit)
	return nil
}

// mergePremade appends premade templates missing from a stored list.
func mergePremade(list []schema.Template) []schema.Template {
	seen := make(map[string]bool, len(list))
	for _, t := range list {
		seen[t.ID] = true
	}
	var premade []schema.Template
	for _, t := range schema.Premade() {
		if !seen[t.ID] {
			premade = append(premade, t)
		}
	}
	return append(premade, list...)
}

// promptFields asks for every field not already answered in preset.
func promptFields(descs []fields.Descriptor, preset map[string]string) (map[string]string, error) {
	data := make(map[string]string, len(descs)+len(preset))
	for k, v := range preset {
		data[k] = v
	}

	for _, d := range descs {
		if _, ok := data[d.Key]; ok {
			continue
		}
		var answer string
		if err := survey.AskOne(questionFor(d), &answer); err != nil {
			return nil, err
		}
		data[d.Key] = strings.TrimSpace(answer)
	}
	return data, nil
}

// questionFor builds the prompt for one field.
func questionFor(d fields.Descriptor) *survey.Input {
	q := &survey.Input{Message: d.Label + ":"}
	switch d.Kind {
	case fields.KindImage:
		q.Help = "Image URL (http/https) or path under the asset root"
	case fields.KindBarcode:
		q.Help = fmt.Sprintf("Barcode payload; leave empty to use %s", fields.SKUKey)
	case fields.KindQRCode:
		q.Help = fmt.Sprintf("QR code payload; leave empty to use %s", fields.SKUKey)
	}
	return q
}
