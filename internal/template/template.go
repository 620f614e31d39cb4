// Package template loads sheet templates and seeds them into the template
// partition (owner 0) of a store.
//
// Two formats are read. The YAML format carries a schema_version, the cells
// of one or more sheets and the comparison reports built from them. The
// legacy format is the tab-separated Windows-1252 export of a single sheet.
package template

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pegada/calcpc/internal/report"
	"github.com/pegada/calcpc/internal/sheet"
)

// File is a parsed template file.
type File struct {
	SchemaVersion string `yaml:"schema_version"`
	Name          string `yaml:"name"`
	Description   string `yaml:"description,omitempty"`

	// Sheets maps a sheet (table) name to its template rows.
	Sheets map[string][]*sheet.Cell `yaml:"sheets"`

	Reports []report.Definition `yaml:"reports,omitempty"`
}

// Parse decodes and validates a YAML template. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrInvalidTemplate)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	for _, cells := range f.Sheets {
		for _, c := range cells {
			if c != nil {
				c.Type = sheet.ParseCellType(string(c.Type))
			}
		}
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadFile reads and parses the template at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	f, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// SheetNames returns the template's sheets in name order.
func (f *File) SheetNames() []string {
	names := make([]string, 0, len(f.Sheets))
	for n := range f.Sheets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validate checks the schema version, sheet and cell names, cell types and
// report definitions. All problems are reported together.
func (f *File) Validate() error {
	if err := checkSchemaVersion(f.SchemaVersion); err != nil {
		return err
	}

	var errs []error
	if len(f.Sheets) == 0 {
		errs = append(errs, errors.New("no sheets"))
	}
	for _, name := range f.SheetNames() {
		if err := sheet.ValidateSheetName(name); err != nil {
			errs = append(errs, err)
			continue
		}
		errs = append(errs, validateCells(name, f.Sheets[name])...)
	}

	seen := make(map[string]bool, len(f.Reports))
	for _, d := range f.Reports {
		if seen[d.Name] {
			errs = append(errs, fmt.Errorf("duplicate report %q", d.Name))
		}
		seen[d.Name] = true
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	return nil
}

func validateCells(sheetName string, cells []*sheet.Cell) []error {
	var errs []error
	seen := make(map[string]bool, len(cells))
	for i, c := range cells {
		switch {
		case c == nil:
			errs = append(errs, fmt.Errorf("%s: row %d is empty", sheetName, i+1))
			continue
		case !sheet.IsCellName(c.Name):
			errs = append(errs, fmt.Errorf("%s: row %d: invalid cell name %q", sheetName, i+1, c.Name))
		case seen[c.Name]:
			errs = append(errs, fmt.Errorf("%s: duplicate cell %s", sheetName, c.Name))
		}
		seen[c.Name] = true
		if !c.Type.IsKnown() {
			errs = append(errs, fmt.Errorf("%s!%s: unknown type %q", sheetName, c.Name, c.Type))
		}
	}
	return errs
}

// Write encodes f as YAML.
func (f *File) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

// normalize prepares a row for the template partition. Selectboxes always
// hold 0 and their options are trimmed.
func normalize(c *sheet.Cell) *sheet.Cell {
	cp := c.Clone(sheet.TemplateOwner)
	cp.Type = sheet.ParseCellType(string(cp.Type))
	if cp.Type == sheet.TypeSelectbox {
		cp.Value = 0
		cp.SelectionOptions = strings.Join(sheet.SplitOptions(cp.SelectionOptions), "|")
	}
	return cp
}
