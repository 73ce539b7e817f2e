package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/labelpress/pkg/fields"
	"github.com/matzehuels/labelpress/pkg/schema"
)

// fieldsOpts holds the command-line flags for the fields command.
type fieldsOpts struct {
	template string // template file or stored template ID
	asJSON   bool   // print descriptors as JSON
	asCSV    bool   // print the CSV header row
	output   string // write CSV to a file instead of stdout
}

// fieldsCommand creates the fields command, which lists the data a layout
// asks for.
func (c *CLI) fieldsCommand() *cobra.Command {
	var opts fieldsOpts

	cmd := &cobra.Command{
		Use:   "fields [schema-file]",
		Short: "List the data fields of a layout",
		Long: `List the data fields of a layout in the order they should be presented.

Text and image elements contribute their data key. Barcode and QR code
elements always get a field, named after the element when it has no key.
With --csv, print the header row of a CSV batch file for the layout.`,
		Example: `  labelpress fields layout.json
  labelpress fields --template type-2 --json
  labelpress fields --template type-1 --csv -o rows.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			s, name, err := c.loadLayout(ctx, args, opts.template)
			if err != nil {
				return err
			}
			switch {
			case opts.asCSV:
				return writeFieldsCSV(s, opts.output)
			case opts.asJSON:
				return writeFieldsJSON(os.Stdout, fields.Discover(s))
			default:
				printFieldsTable(name, fields.Discover(s))
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "template file or stored template ID")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print fields as JSON")
	cmd.Flags().BoolVar(&opts.asCSV, "csv", false, "print the CSV header row")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "CSV output file (with --csv)")
	cmd.MarkFlagsMutuallyExclusive("json", "csv")

	return cmd
}

// loadLayout returns the layout named by a schema file argument or a
// template reference, plus a display name.
func (c *CLI) loadLayout(ctx context.Context, args []string, template string) (schema.Schema, string, error) {
	switch {
	case len(args) == 1 && template != "":
		return schema.Schema{}, "", fmt.Errorf("a schema file and --template are mutually exclusive")
	case len(args) == 1:
		s, err := schema.LoadSchema(args[0])
		return s, args[0], err
	case template != "":
		st, err := c.newStore(ctx)
		if err != nil {
			return schema.Schema{}, "", err
		}
		defer st.Close()
		tmpl, err := resolveTemplate(ctx, st, template)
		if err != nil {
			return schema.Schema{}, "", err
		}
		return tmpl.Layout(), tmpl.ID, nil
	default:
		return schema.Schema{}, "", fmt.Errorf("either a schema file or --template is required")
	}
}

func writeFieldsCSV(s schema.Schema, output string) error {
	if output == "" {
		return fields.WriteCSV(os.Stdout, s)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := fields.WriteCSV(f, s); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printSuccess("Wrote CSV header")
	printFile(output)
	return nil
}

func writeFieldsJSON(w io.Writer, descs []fields.Descriptor) error {
	if descs == nil {
		descs = []fields.Descriptor{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(descs)
}

func printFieldsTable(name string, descs []fields.Descriptor) {
	if len(descs) == 0 {
		printInfo("%s has no data fields", name)
		return
	}

	rows := make([][]string, len(descs))
	for i, d := range descs {
		rows[i] = []string{d.Key, d.Label, string(d.Kind)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Key", "Label", "Kind").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 2 && descs[row].Kind.IsCode():
				return StyleDim
			}
			return lipgloss.NewStyle()
		})

	fmt.Println(StyleTitle.Render(name))
	fmt.Println(t.Render())
}
