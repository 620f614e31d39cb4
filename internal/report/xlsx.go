package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	ComparisonSheet = "Comparativo"
	SummarySheet    = "Resumo"
)

// Built-in excelize number formats.
const (
	numFmtDecimal = 4  // #,##0.00
	numFmtPercent = 10 // 0.00%
)

// WriteXLSX writes c as a workbook: one sheet with the compared rows and one
// with the report metadata and equivalencies.
func WriteXLSX(w io.Writer, c *Comparison) error {
	f, err := buildWorkbook(c)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Write(w)
}

// SaveXLSX writes c to path.
func SaveXLSX(path string, c *Comparison) error {
	f, err := buildWorkbook(c)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.SaveAs(path)
}

func buildWorkbook(c *Comparison) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ComparisonSheet); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeComparison(f, c); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("writing %s: %w", ComparisonSheet, err)
	}
	if err := writeSummary(f, c); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("writing %s: %w", SummarySheet, err)
	}
	return f, nil
}

func writeComparison(f *excelize.File, c *Comparison) error {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	decimal, err := f.NewStyle(&excelize.Style{NumFmt: numFmtDecimal})
	if err != nil {
		return err
	}
	percent, err := f.NewStyle(&excelize.Style{NumFmt: numFmtPercent})
	if err != nil {
		return err
	}

	if err := setRow(f, ComparisonSheet, 1, toAny(headers)); err != nil {
		return err
	}
	if err := f.SetCellStyle(ComparisonSheet, "A1", "F1", header); err != nil {
		return err
	}

	for i, r := range c.Rows {
		line := i + 2
		values := []any{r.Label, r.Unit, r.Company, r.Sector, r.Delta, nil}
		if r.HasPercent {
			values[5] = r.Percent / 100
		}
		if err := setRow(f, ComparisonSheet, line, values); err != nil {
			return err
		}
		if err := f.SetCellStyle(ComparisonSheet, cell(3, line), cell(5, line), decimal); err != nil {
			return err
		}
		if err := f.SetCellStyle(ComparisonSheet, cell(6, line), cell(6, line), percent); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(ComparisonSheet, "A", "A", 40); err != nil {
		return err
	}
	return f.SetColWidth(ComparisonSheet, "B", "F", 14)
}

func writeSummary(f *excelize.File, c *Comparison) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	rows := [][]any{
		{"Relatório", c.Title},
		{"Usuário", c.Owner},
		{"Gerado em", c.GeneratedAt.Format("02/01/2006 15:04")},
	}
	if !c.Company.IsEmpty {
		rows = append(rows, []any{"Empresa", c.Company.DisplayText})
	}
	if !c.Sector.IsEmpty {
		rows = append(rows, []any{"Setor", c.Sector.DisplayText})
	}
	for i, r := range rows {
		if err := setRow(f, SummarySheet, i+1, r); err != nil {
			return err
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 14)
}

func setRow(f *excelize.File, sheetName string, line int, values []any) error {
	for col, v := range values {
		if v == nil {
			continue
		}
		if err := f.SetCellValue(sheetName, cell(col+1, line), v); err != nil {
			return err
		}
	}
	return nil
}

// cell converts 1-based coordinates to an "A1" name. Coordinates are always
// positive here.
func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
