package engine

import (
	"strings"

	"github.com/pegada/calcpc/internal/formula"
	"github.com/pegada/calcpc/internal/sheet"
)

// valuePlaceholder is replaced in display text by the formatted value.
const valuePlaceholder = "{value}"

// CellView is a cell as presented to callers.
type CellView struct {
	Name string         `json:"name"`
	Type sheet.CellType `json:"type"`

	// Label is the display text with "{value}" substituted.
	Label string `json:"label,omitempty"`

	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`

	// Text is the selected option, typed date or referenced name.
	Text    string   `json:"text,omitempty"`
	Options []string `json:"options,omitempty"`

	Column  int    `json:"column"`
	Row     int    `json:"row"`
	Section string `json:"section,omitempty"`
	Hidden  bool   `json:"hidden,omitempty"`
}

func (e *Engine) view(c *sheet.Cell) CellView {
	formatted := e.formatter.Float(c.Value, e.precision)
	v := CellView{
		Name:      c.Name,
		Type:      c.Type,
		Label:     strings.ReplaceAll(c.DisplayText, valuePlaceholder, formatted),
		Value:     c.Value,
		Formatted: formatted,
		Text:      c.TextValue,
		Column:    c.Column,
		Row:       c.Row,
		Section:   c.Section,
		Hidden:    c.Type.IsHidden(),
	}
	// Conditional options are routing rules, not user choices.
	if c.Type == sheet.TypeSelectbox {
		v.Options = c.Options()
	}
	return v
}

// Outcome is the result of a user edit.
type Outcome struct {
	Cell CellView `json:"cell"`

	// Written is false when the edit was rejected softly (e.g. an invalid date).
	Written bool `json:"written"`

	// Recalculated counts dependent cells recomputed after the edit.
	Recalculated int `json:"recalculated"`

	Warnings []formula.Warning `json:"warnings,omitempty"`
}
