package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pegada/calcpc/internal/locale"
)

// RenderOptions controls Render.
type RenderOptions struct {
	// Styled draws a bordered, colored table for terminals.
	Styled bool

	Formatter *locale.Formatter
	Precision int
}

//nolint:gochecknoglobals // Column headings shared by every output format.
var headers = []string{"Indicador", "Unidade", "Empresa", "Setor", "Diferença", "%"}

func (o RenderOptions) formatter() *locale.Formatter {
	if o.Formatter == nil {
		return locale.NewFormatter(locale.DefaultTag)
	}
	return o.Formatter
}

// cells formats one row as table text.
func (o RenderOptions) cells(r Row) []string {
	f := o.formatter()
	pct := "-"
	if r.HasPercent {
		pct = f.Float(r.Percent, 1) + "%"
	}
	return []string{
		r.Label,
		r.Unit,
		f.Float(r.Company, o.Precision),
		f.Float(r.Sector, o.Precision),
		f.Float(r.Delta, o.Precision),
		pct,
	}
}

// Render writes c to w.
func Render(w io.Writer, c *Comparison, opts RenderOptions) error {
	if opts.Styled {
		return renderStyled(w, c, opts)
	}
	return renderPlain(w, c, opts)
}

func renderStyled(w io.Writer, c *Comparison, opts RenderOptions) error {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	worse := lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("196"))
	better := lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("42"))

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 4 && row >= 0 && row < len(c.Rows):
				// Lower footprint than the sector is better.
				if c.Rows[row].Delta > 0 {
					return worse
				}
				if c.Rows[row].Delta < 0 {
					return better
				}
			}
			return cellStyle
		})
	for _, r := range c.Rows {
		t.Row(opts.cells(r)...)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(c.Title))
	b.WriteString("\n")
	b.WriteString(t.Render())
	b.WriteString("\n")
	writeEquivalencies(&b, c)
	_, err := io.WriteString(w, b.String())
	return err
}

func renderPlain(w io.Writer, c *Comparison, opts RenderOptions) error {
	var b strings.Builder
	b.WriteString(c.Title)
	b.WriteString("\n\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, r := range c.Rows {
		fmt.Fprintln(tw, strings.Join(opts.cells(r), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	b.WriteString("\n")
	writeEquivalencies(&b, c)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeEquivalencies(b *strings.Builder, c *Comparison) {
	if !c.Company.IsEmpty {
		fmt.Fprintf(b, "Empresa: %s\n", c.Company.DisplayText)
	}
	if !c.Sector.IsEmpty {
		fmt.Fprintf(b, "Setor: %s\n", c.Sector.DisplayText)
	}
}
