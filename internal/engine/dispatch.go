package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pegada/calcpc/internal/formula"
	"github.com/pegada/calcpc/internal/locale"
	"github.com/pegada/calcpc/internal/sheet"
	"github.com/pegada/calcpc/internal/store"
)

// pass holds one owner's partition in memory while derived cells are
// computed. Computed values are written to the snapshot as well as to the
// store, so later cells read them.
type pass struct {
	ctx   context.Context
	sh    *Sheet
	owner int64

	// cells maps names to the newest row of that name.
	cells map[string]*sheet.Cell
	rows  []*sheet.Cell

	reference map[string]*sheet.Cell
	others    map[string]map[string]*sheet.Cell

	// loadErrs collects storage failures hit while resolving references.
	loadErrs []error
}

func (s *Sheet) newPass(ctx context.Context, owner int64) (*pass, error) {
	rows, err := s.engine.store.List(ctx, s.name, owner, store.Query{OrderBy: store.OrderByID})
	if err != nil {
		return nil, err
	}
	p := &pass{
		ctx:    ctx,
		sh:     s,
		owner:  owner,
		cells:  make(map[string]*sheet.Cell, len(rows)),
		rows:   rows,
		others: make(map[string]map[string]*sheet.Cell),
	}
	for _, c := range rows {
		p.cells[c.Name] = c
	}
	return p, nil
}

// derived returns the newest row of every derived cell, by ascending id.
func (p *pass) derived() []*sheet.Cell {
	var out []*sheet.Cell
	for _, c := range p.rows {
		if c.Type.IsDerived() && p.cells[c.Name] == c {
			out = append(out, c)
		}
	}
	return out
}

// compute dispatches on the cell type. Types without a computation keep
// their current value.
func (p *pass) compute(c *sheet.Cell) formula.Result {
	var res formula.Result
	switch c.Type.Visible() {
	case sheet.TypeFormula:
		res = p.sh.engine.evaluator.Evaluate(c.Expression, p)
	case sheet.TypeConditional:
		res = p.conditional(c)
	case sheet.TypeLookup:
		res = p.lookup(c)
	case sheet.TypeLink:
		res = p.link(c)
	default:
		return formula.Result{Value: c.Value}
	}
	for i := range res.Warnings {
		res.Warnings[i].Cell = c.Name
	}
	return res
}

// conditional matches the scrutinee's selected text against
// "condition:target" pairs. The first matching pair wins; no match is 0.
func (p *pass) conditional(c *sheet.Cell) formula.Result {
	scrutinee := strings.TrimSpace(c.Expression)
	selected, ok := p.Text(formula.ParseRef(scrutinee))
	selected = strings.TrimSpace(selected)
	if !ok || selected == "" {
		return formula.Result{}
	}

	for _, pair := range sheet.SplitOptions(c.SelectionOptions) {
		cond, target, found := strings.Cut(pair, ":")
		if !found || strings.TrimSpace(cond) != selected {
			continue
		}
		return p.target(strings.TrimSpace(target))
	}
	return formula.Result{Warnings: []formula.Warning{{
		Code:   formula.WarnNoMatch,
		Ref:    scrutinee,
		Detail: fmt.Sprintf("no branch for %q", selected),
	}}}
}

// target resolves a conditional branch: a literal number or fraction, or the
// name of a reference-sheet coefficient.
func (p *pass) target(t string) formula.Result {
	if v, err := parseCoefficient(t); err == nil {
		return formula.Result{Value: v}
	}
	return p.referenceCoefficient(t)
}

// lookup copies the coefficient named by the cell's text.
func (p *pass) lookup(c *sheet.Cell) formula.Result {
	name := strings.TrimSpace(c.TextValue)
	if name == "" {
		return formula.Result{}
	}
	return p.referenceCoefficient(name)
}

// link copies the value of "sheet!cell" (or "cell" on the default source
// sheet) from the same owner.
func (p *pass) link(c *sheet.Cell) formula.Result {
	target := strings.TrimSpace(c.TextValue)
	if target == "" {
		return formula.Result{}
	}
	ref := formula.ParseRef(target)
	if ref.Sheet == "" {
		ref.Sheet = p.sh.engine.linkSource
	}
	v, ok := p.Value(ref)
	if !ok {
		return formula.Result{Warnings: []formula.Warning{{Code: formula.WarnMissingReference, Ref: ref.String()}}}
	}
	return formula.Result{Value: v}
}

func (p *pass) referenceCoefficient(name string) formula.Result {
	row, ok := p.referenceRow(name)
	if !ok {
		return formula.Result{Warnings: []formula.Warning{{
			Code: formula.WarnMissingReference,
			Ref:  p.sh.engine.referenceAlias + "!" + name,
		}}}
	}
	v, err := rowCoefficient(row)
	if err != nil {
		return formula.Result{Warnings: []formula.Warning{{
			Code:   formula.WarnInvalidNumber,
			Ref:    p.sh.engine.referenceAlias + "!" + name,
			Detail: err.Error(),
		}}}
	}
	return formula.Result{Value: v}
}

// Value implements formula.Lookup.
func (p *pass) Value(ref formula.Ref) (float64, bool) {
	if p.isReference(ref.Sheet) {
		row, ok := p.referenceRow(ref.Name)
		if !ok {
			return 0, false
		}
		v, err := rowCoefficient(row)
		return v, err == nil
	}
	c, ok := p.cell(ref)
	if !ok {
		return 0, false
	}
	return c.Value, true
}

// Text implements formula.Lookup.
func (p *pass) Text(ref formula.Ref) (string, bool) {
	if p.isReference(ref.Sheet) {
		row, ok := p.referenceRow(ref.Name)
		if !ok {
			return "", false
		}
		return row.TextValue, true
	}
	c, ok := p.cell(ref)
	if !ok {
		return "", false
	}
	return c.TextValue, true
}

func (p *pass) isReference(qualifier string) bool {
	e := p.sh.engine
	return qualifier != "" && (qualifier == e.referenceAlias || qualifier == e.referenceSheet)
}

func (p *pass) cell(ref formula.Ref) (*sheet.Cell, bool) {
	if ref.Sheet == "" || ref.Sheet == p.sh.name {
		c, ok := p.cells[ref.Name]
		return c, ok
	}
	rows, ok := p.otherSheet(ref.Sheet)
	if !ok {
		return nil, false
	}
	c, ok := rows[ref.Name]
	return c, ok
}

func (p *pass) otherSheet(name string) (map[string]*sheet.Cell, bool) {
	if rows, ok := p.others[name]; ok {
		return rows, rows != nil
	}
	if sheet.ValidateSheetName(name) != nil {
		p.others[name] = nil
		return nil, false
	}
	rows, err := p.sh.engine.store.List(p.ctx, name, p.owner, store.Query{})
	if err != nil {
		p.loadErrs = append(p.loadErrs, err)
		p.others[name] = nil
		return nil, false
	}
	m := make(map[string]*sheet.Cell, len(rows))
	for _, c := range rows {
		m[c.Name] = c
	}
	p.others[name] = m
	return m, true
}

func (p *pass) referenceRow(name string) (*sheet.Cell, bool) {
	if p.reference == nil {
		p.reference = make(map[string]*sheet.Cell)
		rows, err := p.sh.engine.store.List(p.ctx, p.sh.engine.referenceSheet, sheet.TemplateOwner, store.Query{})
		if err != nil {
			p.loadErrs = append(p.loadErrs, err)
		}
		for _, c := range rows {
			p.reference[c.Name] = c
		}
	}
	c, ok := p.reference[name]
	return c, ok
}

func (p *pass) loadErr() error {
	return errors.Join(p.loadErrs...)
}

// rowCoefficient reads a reference row: its expression when it holds a
// number or fraction, its stored value otherwise.
func rowCoefficient(row *sheet.Cell) (float64, error) {
	if strings.TrimSpace(row.Expression) == "" {
		return row.Value, nil
	}
	return parseCoefficient(row.Expression)
}

// parseCoefficient parses "0,25", "12.5" or "1/3". A zero denominator
// yields 0.
func parseCoefficient(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty coefficient", locale.ErrInvalidNumber)
	}
	num, den, isFraction := strings.Cut(s, "/")
	if !isFraction {
		return locale.ParseFloat(s)
	}
	n, err := locale.ParseFloat(num)
	if err != nil {
		return 0, err
	}
	d, err := locale.ParseFloat(den)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, nil
	}
	return n / d, nil
}
