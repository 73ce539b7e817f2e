package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/labelpress/pkg/fields"
	"github.com/matzehuels/labelpress/pkg/schema"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// TemplateListModel - Interactive template selection
// =============================================================================

// TemplateListModel is the bubbletea model for interactive template selection.
type TemplateListModel struct {
	Templates []schema.Template
	Cursor    int
	Selected  *schema.Template
	Height    int
	Offset    int
}

// NewTemplateListModel creates a new template list model.
func NewTemplateListModel(templates []schema.Template) TemplateListModel {
	return TemplateListModel{
		Templates: templates,
		Height:    15,
	}
}

func (m TemplateListModel) Init() tea.Cmd {
	return nil
}

func (m TemplateListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Templates)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Templates) == 0 {
				return m, tea.Quit
			}
			t := m.Templates[m.Cursor]
			m.Selected = &t
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m TemplateListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Template"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Templates))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, templateRow(m.Templates[i])...))
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Size", "Fields", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			isCurrent := m.Offset+row == m.Cursor
			base := lipgloss.NewStyle()
			if col >= 3 {
				base = base.Foreground(colorDim)
				if isCurrent {
					base = base.Foreground(colorGray)
				}
			}
			if isCurrent {
				if col < 3 {
					return base.Foreground(colorGreen).Bold(true)
				}
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Templates))))

	return b.String()
}

// pickTemplate runs the picker and returns the chosen template, or nil when
// the user quit without choosing.
func pickTemplate(templates []schema.Template) (*schema.Template, error) {
	if len(templates) == 0 {
		return nil, fmt.Errorf("no templates available (run %q)", appName+" templates seed")
	}
	final, err := tea.NewProgram(NewTemplateListModel(templates)).Run()
	if err != nil {
		return nil, err
	}
	return final.(TemplateListModel).Selected, nil
}

// templateRow formats the ID, name, size, field count and age of a template.
func templateRow(t schema.Template) []string {
	name := t.Name
	if name == "" {
		name = "—"
	}
	size := fmt.Sprintf("%gx%g mm @ %d", t.WidthMM, t.HeightMM, t.DPI)
	nFields := fmt.Sprint(len(fields.Discover(t.Layout())))
	return []string{t.ID, name, size, nFields, formatRelativeTime(t.UpdatedAt)}
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
