package sheet

import (
	"regexp"
	"strings"
)

// Cell is one row of a sheet.
type Cell struct {
	// ID is the surrogate key. Higher ids win when names collide.
	ID int64 `json:"id" yaml:"-"`

	// Name is the cell address, e.g. "A12".
	Name string `json:"name" yaml:"name"`

	Type CellType `json:"type" yaml:"type"`

	// Expression is a formula for formula cells, the scrutinee cell name for
	// conditional cells and a coefficient ("0.5", "1/3") on the reference sheet.
	Expression string `json:"expression,omitempty" yaml:"expression,omitempty"`

	// DisplayText is the label shown next to the cell; "{value}" is replaced
	// by the formatted value.
	DisplayText string `json:"display_text,omitempty" yaml:"display_text,omitempty"`

	// Value is the authoritative numeric value.
	Value float64 `json:"value" yaml:"value,omitempty"`

	// SelectionOptions is pipe delimited: "A|B" for selectboxes,
	// "cond:target|..." for conditionals.
	SelectionOptions string `json:"selection_options,omitempty" yaml:"selection_options,omitempty"`

	// TextValue holds the selected option, a date or a referenced name.
	TextValue string `json:"text_value,omitempty" yaml:"text_value,omitempty"`

	Column int `json:"column" yaml:"column,omitempty"`
	Row    int `json:"row" yaml:"row,omitempty"`

	OwnerID int64  `json:"owner_id" yaml:"-"`
	Section string `json:"section,omitempty" yaml:"section,omitempty"`
}

// Clone returns a copy of c assigned to owner with the id cleared.
func (c *Cell) Clone(owner int64) *Cell {
	cp := *c
	cp.ID = 0
	cp.OwnerID = owner
	return &cp
}

// Options splits SelectionOptions on '|' and trims every entry. Empty
// entries are dropped.
func (c *Cell) Options() []string {
	return SplitOptions(c.SelectionOptions)
}

// HasOption reports whether opt is one of the cell's options.
func (c *Cell) HasOption(opt string) bool {
	opt = strings.TrimSpace(opt)
	for _, o := range c.Options() {
		if o == opt {
			return true
		}
	}
	return false
}

// HasValidLayout reports whether the cell fits the grid.
// Rows start at 1; columns run from 1 to maxColumns.
func (c *Cell) HasValidLayout(maxColumns int) bool {
	return c.Column >= 1 && c.Column <= maxColumns && c.Row >= 1
}

// SplitOptions splits a pipe-delimited list.
func SplitOptions(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// refPattern matches a cell address: one or two uppercase letters and digits.
var refPattern = regexp.MustCompile(`^[A-Z]{1,2}[0-9]+$`) //nolint:gochecknoglobals // Compiled once.

// IsCellName reports whether s is a cell address such as "A1" or "AB23".
func IsCellName(s string) bool {
	return refPattern.MatchString(s)
}
