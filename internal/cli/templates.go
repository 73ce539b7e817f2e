package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/labelpress/pkg/schema"
	"github.com/matzehuels/labelpress/pkg/store"
)

// templatesCommand creates the template management command.
func (c *CLI) templatesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template", "tpl"},
		Short:   "Manage stored label templates",
	}

	cmd.AddCommand(c.templatesListCommand())
	cmd.AddCommand(c.templatesShowCommand())
	cmd.AddCommand(c.templatesImportCommand())
	cmd.AddCommand(c.templatesDeleteCommand())
	cmd.AddCommand(c.templatesSeedCommand())
	cmd.AddCommand(c.templatesInstancesCommand())

	return cmd
}

// withStore opens the configured store for the duration of fn.
func (c *CLI) withStore(cmd *cobra.Command, fn func(ctx context.Context, st store.Store) error) error {
	ctx := withLogger(cmd.Context(), c.Logger)
	st, err := c.newStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, st)
}

// templatesListCommand creates the "templates list" subcommand.
func (c *CLI) templatesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored templates",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, st store.Store) error {
				list, err := st.ListTemplates(ctx)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					printInfo("No templates stored")
					printNextStep("Add the premade templates", appName+" templates seed")
					return nil
				}
				printTemplatesTable(list)
				return nil
			})
		},
	}
}

// templatesShowCommand creates the "templates show" subcommand.
func (c *CLI) templatesShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a template as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, st store.Store) error {
				t, err := resolveTemplate(ctx, st, args[0])
				if err != nil {
					return err
				}
				return schema.WriteTemplate(*t, os.Stdout)
			})
		},
	}
}

// templatesImportCommand creates the "templates import" subcommand.
func (c *CLI) templatesImportCommand() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store a template from a JSON, YAML or TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := schema.LoadTemplate(args[0])
			if err != nil {
				return err
			}
			if id != "" {
				t.ID = id
			}
			return c.withStore(cmd, func(ctx context.Context, st store.Store) error {
				if err := st.SaveTemplate(ctx, &t); err != nil {
					return err
				}
				printSuccess("Stored template %s", StyleHighlight.Render(t.ID))
				printKeyValue("Name", t.Name)
				printKeyValue("Size", fmt.Sprintf("%gx%g mm @ %d dpi", t.WidthMM, t.HeightMM, t.DPI))
				printKeyValue("Elements", fmt.Sprint(t.Layout().Len()))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "override the template ID")
	return cmd
}

// templatesDeleteCommand creates the "templates delete" subcommand.
func (c *CLI) templatesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored template (its instances are kept)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, st store.Store) error {
				if err := st.DeleteTemplate(ctx, args[0]); err != nil {
					return err
				}
				printSuccess("Deleted template %s", args[0])
				return nil
			})
		},
	}
}

// templatesSeedCommand creates the "templates seed" subcommand.
func (c *CLI) templatesSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Store the premade templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, st store.Store) error {
				n, err := store.Seed(ctx, st)
				if err != nil {
					return err
				}
				printSuccess("Seeded %d premade templates", n)
				printDetail("Store: %s", c.storeLabel())
				return nil
			})
		},
	}
}

// templatesInstancesCommand creates the "templates instances" subcommand.
func (c *CLI) templatesInstancesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "instances [id]",
		Short: "List rendered label instances, optionally for one template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templateID := ""
			if len(args) == 1 {
				templateID = args[0]
			}
			return c.withStore(cmd, func(ctx context.Context, st store.Store) error {
				list, err := st.ListInstances(ctx, templateID)
				if err != nil {
					return err
				}
				if len(list) == 0 {
					printInfo("No instances")
					return nil
				}
				for _, inst := range list {
					fmt.Printf("%s  %s  %s\n",
						StyleHighlight.Render(inst.ID),
						StyleValue.Render(inst.TemplateID),
						StyleDim.Render(formatRelativeTime(inst.CreatedAt)))
					if inst.PNGPath != "" {
						printFile(inst.PNGPath)
					}
				}
				return nil
			})
		},
	}
}

func printTemplatesTable(list []schema.Template) {
	rows := make([][]string, len(list))
	for i, t := range list {
		rows[i] = templateRow(t)
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Size", "Fields", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col >= 2:
				return StyleDim
			}
			return lipgloss.NewStyle()
		})
	fmt.Println(t.Render())
}
