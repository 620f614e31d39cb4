package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pegada/calcpc/internal/formula"
	"github.com/pegada/calcpc/internal/sheet"
)

// Explanation shows how a formula cell reads its operands.
type Explanation struct {
	Cell CellView `json:"cell"`

	Expression string `json:"expression,omitempty"`

	// Resolved is Expression with every reference replaced by its current
	// value, or by the quoted dates of a date difference.
	Resolved string `json:"resolved,omitempty"`

	Warnings []formula.Warning `json:"warnings,omitempty"`
}

// Explain returns the cell with its formula resolved against owner's current
// values. Cells that are not formulas come back with only Cell set. Nothing
// is recomputed or written.
func (s *Sheet) Explain(ctx context.Context, owner int64, name string) (Explanation, error) {
	p, err := s.newPass(ctx, owner)
	if err != nil {
		return Explanation{}, err
	}
	c, ok := p.cells[name]
	if !ok {
		return Explanation{}, fmt.Errorf("%w: %s!%s (owner %d)", sheet.ErrCellNotFound, s.name, name, owner)
	}

	ex := Explanation{Cell: s.engine.view(c)}
	if c.Type.Visible() != sheet.TypeFormula {
		return ex, nil
	}

	ex.Expression = strings.TrimSpace(c.Expression)
	if final, initial, isDate := formula.DateDifference(ex.Expression); isDate {
		finalText, _ := p.Text(final)
		initialText, _ := p.Text(initial)
		ex.Resolved = strconv.Quote(finalText) + " - " + strconv.Quote(initialText)
	} else {
		ex.Resolved, ex.Warnings = formula.Resolve(ex.Expression, p)
	}
	for i := range ex.Warnings {
		ex.Warnings[i].Cell = name
	}
	return ex, p.loadErr()
}
