package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pegada/calcpc/internal/engine"
	"github.com/pegada/calcpc/internal/formula"
)

// Terminal colors.
const (
	colorTitle   = lipgloss.Color("39")
	colorBorder  = lipgloss.Color("240")
	colorSection = lipgloss.Color("33")
	colorWarning = lipgloss.Color("214")
	colorError   = lipgloss.Color("196")
	colorOK      = lipgloss.Color("42")
)

//nolint:gochecknoglobals // Column headings shared by styled and plain output.
var cellHeaders = []string{"Célula", "Tipo", "Rótulo", "Valor", "Texto", "Linha", "Coluna"}

func cellRow(v engine.CellView) []string {
	text := v.Text
	if len(v.Options) > 0 {
		text = fmt.Sprintf("%s [%s]", v.Text, strings.Join(v.Options, " | "))
	}
	return []string{
		v.Name,
		string(v.Type),
		v.Label,
		v.Formatted,
		strings.TrimSpace(text),
		fmt.Sprint(v.Row),
		fmt.Sprint(v.Column),
	}
}

// renderCells writes views as a table, grouped by section when styled.
func renderCells(w io.Writer, views []engine.CellView) error {
	if isWriterTerminal(w) {
		return renderStyledCells(w, views)
	}
	return renderPlainCells(w, views)
}

func renderStyledCells(w io.Writer, views []engine.CellView) error {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(colorSection)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(colorTitle).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	hiddenStyle := lipgloss.NewStyle().Padding(0, 1).Faint(true)

	var out strings.Builder
	for _, group := range groupBySection(views) {
		if group.section != "" {
			out.WriteString(sectionStyle.Render(group.section))
			out.WriteString("\n")
		}
		rows := group.views
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
			Headers(cellHeaders...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return headerStyle
				case row >= 0 && row < len(rows) && rows[row].Hidden:
					return hiddenStyle
				default:
					return cellStyle
				}
			})
		for _, v := range rows {
			t.Row(cellRow(v)...)
		}
		out.WriteString(t.Render())
		out.WriteString("\n")
	}
	_, err := io.WriteString(w, out.String())
	return err
}

func renderPlainCells(w io.Writer, views []engine.CellView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(append([]string{"Seção"}, cellHeaders...), "\t"))
	for _, v := range views {
		fmt.Fprintln(tw, strings.Join(append([]string{v.Section}, cellRow(v)...), "\t"))
	}
	return tw.Flush()
}

type sectionGroup struct {
	section string
	views   []engine.CellView
}

// groupBySection keeps the order in which sections first appear.
func groupBySection(views []engine.CellView) []sectionGroup {
	var groups []sectionGroup
	index := make(map[string]int)
	for _, v := range views {
		i, ok := index[v.Section]
		if !ok {
			i = len(groups)
			index[v.Section] = i
			groups = append(groups, sectionGroup{section: v.Section})
		}
		groups[i].views = append(groups[i].views, v)
	}
	return groups
}

// renderCell writes one cell as "name = value" plus its label.
func renderCell(w io.Writer, v engine.CellView) {
	line := fmt.Sprintf("%s = %s", v.Name, v.Formatted)
	if v.Text != "" {
		line += fmt.Sprintf(" (%s)", v.Text)
	}
	if isWriterTerminal(w) {
		line = lipgloss.NewStyle().Bold(true).Render(line)
	}
	fmt.Fprintln(w, line)
	if v.Label != "" {
		fmt.Fprintf(w, "  %s\n", v.Label)
	}
	if len(v.Options) > 0 {
		fmt.Fprintf(w, "  opções: %s\n", strings.Join(v.Options, ", "))
	}
}

// renderWarnings writes one line per warning.
func renderWarnings(w io.Writer, warnings []formula.Warning) {
	if len(warnings) == 0 {
		return
	}
	style := lipgloss.NewStyle().Foreground(colorWarning)
	styled := isWriterTerminal(w)
	for _, warn := range warnings {
		line := "Warning: " + warn.String()
		if styled {
			line = style.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

// renderRecalcReport summarizes one pass.
func renderRecalcReport(w io.Writer, rep *engine.Report) {
	status := "ok"
	color := colorOK
	if !rep.OK() {
		status = fmt.Sprintf("%d not saved: %s", len(rep.Failed), strings.Join(rep.Failed, ", "))
		color = colorError
	}
	line := fmt.Sprintf("%s owner %d: %d computed, %d warnings, %s (%s)",
		rep.Sheet, rep.Owner, rep.Computed, len(rep.Warnings), status, rep.Duration.Round(time.Microsecond))
	if isWriterTerminal(w) {
		line = lipgloss.NewStyle().Foreground(color).Render(line)
	}
	fmt.Fprintln(w, line)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
