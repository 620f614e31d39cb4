// Package report compares an owner's company sheet with the sector
// benchmark sheet, row by row, and renders the comparison as a terminal
// table or an .xlsx workbook.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pegada/calcpc/internal/sheet"
)

type constError string

func (e constError) Error() string { return string(e) }

// Definition errors.
var (
	ErrInvalidDefinition = constError("invalid report definition")
	ErrUnknownReport     = constError("unknown report")
)

// Definition describes one comparison report. It is declared in a template
// file next to the sheets it reads.
type Definition struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`

	CompanySheet string `yaml:"company_sheet"`
	SectorSheet  string `yaml:"sector_sheet"`

	// CarbonRow is the label of the row holding kg CO2e; its values get
	// equivalencies.
	CarbonRow string `yaml:"carbon_row,omitempty"`

	Rows []RowSpec `yaml:"rows"`
}

// RowSpec names the cells compared on one report line.
type RowSpec struct {
	Label   string `yaml:"label"`
	Unit    string `yaml:"unit,omitempty"`
	Company string `yaml:"company"`
	Sector  string `yaml:"sector"`
}

// Validate checks sheet names, cell names and the carbon row label.
func (d Definition) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	for _, s := range []string{d.CompanySheet, d.SectorSheet} {
		if err := sheet.ValidateSheetName(s); err != nil {
			errs = append(errs, err)
		}
	}
	if len(d.Rows) == 0 {
		errs = append(errs, errors.New("at least one row is required"))
	}

	carbonFound := d.CarbonRow == ""
	for i, r := range d.Rows {
		if !sheet.IsCellName(r.Company) || !sheet.IsCellName(r.Sector) {
			errs = append(errs, fmt.Errorf("row %d (%s): cells must be names like A1", i+1, r.Label))
		}
		if r.Label == d.CarbonRow {
			carbonFound = true
		}
	}
	if !carbonFound {
		errs = append(errs, fmt.Errorf("carbon_row %q matches no row", d.CarbonRow))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidDefinition, d.Name, err)
	}
	return nil
}

// Find returns the definition called name.
func Find(defs []Definition, name string) (Definition, error) {
	for _, d := range defs {
		if d.Name == name {
			return d, nil
		}
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownReport, name)
}
