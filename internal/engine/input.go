package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/pegada/calcpc/internal/formula"
	"github.com/pegada/calcpc/internal/locale"
	"github.com/pegada/calcpc/internal/sheet"
	"github.com/pegada/calcpc/internal/store"
)

// EnsureInitialized clones the template into owner's partition (restricted
// to section when it is not empty) and computes the fresh rows. It does
// nothing when owner already has rows in that scope and returns the number
// of rows copied.
func (s *Sheet) EnsureInitialized(ctx context.Context, owner int64, section string) (int, error) {
	if owner == sheet.TemplateOwner {
		return 0, fmt.Errorf("%w: initialize %s", sheet.ErrTemplateOwner, s.name)
	}
	if err := s.engine.store.EnsureSheet(ctx, s.name); err != nil {
		return 0, err
	}

	copied, err := s.engine.store.CloneTemplate(ctx, s.name, owner, section)
	if err != nil {
		return 0, err
	}
	if copied == 0 {
		return 0, nil
	}

	logger := s.logger(ctx, "EnsureInitialized", "")
	logger.Info().
		Int64("owner", owner).
		Str("section", section).
		Int("copied", copied).
		Msg("template cloned")

	if _, err := s.RecalculateAll(ctx, owner); err != nil {
		return copied, err
	}
	return copied, nil
}

// GetCell returns the current state of one cell.
func (s *Sheet) GetCell(ctx context.Context, owner int64, name string) (CellView, error) {
	c, err := s.engine.store.Get(ctx, s.name, name, owner)
	if err != nil {
		return CellView{}, err
	}
	return s.engine.view(c), nil
}

// SetInput stores user text into an input or date cell and recomputes the
// cells that depend on it.
//
// Numeric input accepts comma or period decimals; text that does not parse
// stores 0 and returns a warning. A date that is not a valid dd/mm/yyyy is
// not stored and the outcome reports Written false.
func (s *Sheet) SetInput(ctx context.Context, owner int64, name, raw string) (Outcome, error) {
	c, err := s.engine.store.Get(ctx, s.name, name, owner)
	if err != nil {
		return Outcome{}, err
	}

	var warnings []formula.Warning
	switch c.Type {
	case sheet.TypeInput:
		v, perr := locale.ParseFloat(raw)
		if perr != nil {
			warnings = append(warnings, formula.Warning{Code: formula.WarnInvalidNumber, Cell: name, Detail: perr.Error()})
			v = 0
		}
		err = s.engine.store.SetValue(ctx, s.name, name, owner, v)
	case sheet.TypeDateInput:
		d, derr := sheet.ParseDate(raw)
		if derr != nil {
			return Outcome{
				Cell:     s.engine.view(c),
				Warnings: []formula.Warning{{Code: formula.WarnInvalidDate, Cell: name, Detail: derr.Error()}},
			}, nil
		}
		err = s.engine.store.SetText(ctx, s.name, name, owner, d.String())
	default:
		return Outcome{}, fmt.Errorf("%w: %s is %s", sheet.ErrNotEditable, name, c.Type)
	}
	if err != nil {
		return Outcome{}, err
	}

	return s.afterEdit(ctx, owner, name, warnings)
}

// SetSelection stores the chosen option of a selectbox. The cell's value is
// always 0; conditionals that read it are recomputed.
func (s *Sheet) SetSelection(ctx context.Context, owner int64, name, option string) (Outcome, error) {
	c, err := s.engine.store.Get(ctx, s.name, name, owner)
	if err != nil {
		return Outcome{}, err
	}
	if c.Type != sheet.TypeSelectbox {
		return Outcome{}, fmt.Errorf("%w: %s is %s", sheet.ErrNotEditable, name, c.Type)
	}
	if !c.HasOption(option) {
		return Outcome{}, fmt.Errorf("%w: %q for %s", sheet.ErrInvalidOption, option, name)
	}

	st := s.engine.store
	if err := st.SetText(ctx, s.name, name, owner, option); err != nil {
		return Outcome{}, err
	}
	if err := st.SetValue(ctx, s.name, name, owner, 0); err != nil {
		return Outcome{}, err
	}
	return s.afterEdit(ctx, owner, name, nil)
}

func (s *Sheet) afterEdit(ctx context.Context, owner int64, name string, warnings []formula.Warning) (Outcome, error) {
	report, err := s.recalculateAfterEdit(ctx, owner, name)
	if err != nil && report == nil {
		return Outcome{}, err
	}
	out := Outcome{
		Written:      true,
		Recalculated: report.Computed,
		Warnings:     append(warnings, report.Warnings...),
	}
	c, gerr := s.engine.store.Get(ctx, s.name, name, owner)
	if gerr != nil {
		return out, errors.Join(err, gerr)
	}
	out.Cell = s.engine.view(c)
	return out, err
}

// ListSection returns the visible cells of a section ordered by row and
// column. Cells placed outside the layout grid are skipped.
func (s *Sheet) ListSection(ctx context.Context, owner int64, section string) ([]CellView, error) {
	rows, err := s.engine.store.List(ctx, s.name, owner, store.Query{Section: section, OrderBy: store.OrderByLayout})
	if err != nil {
		return nil, err
	}

	logger := s.logger(ctx, "ListSection", "")
	views := make([]CellView, 0, len(rows))
	for _, c := range rows {
		if c.Type.IsHidden() {
			continue
		}
		if !c.HasValidLayout(s.engine.maxColumns) {
			logger.Warn().
				Str("cell", c.Name).
				Int("column", c.Column).
				Int("row", c.Row).
				Msg("cell outside layout grid, skipped")
			continue
		}
		views = append(views, s.engine.view(c))
	}
	return views, nil
}

// ListAll returns every cell of owner's partition, hidden ones included, in
// layout order.
func (s *Sheet) ListAll(ctx context.Context, owner int64) ([]CellView, error) {
	rows, err := s.engine.store.List(ctx, s.name, owner, store.Query{OrderBy: store.OrderByLayout})
	if err != nil {
		return nil, err
	}
	views := make([]CellView, 0, len(rows))
	for _, c := range rows {
		views = append(views, s.engine.view(c))
	}
	return views, nil
}

// Values returns the current values of names, in the same order. Every name
// must exist.
func (s *Sheet) Values(ctx context.Context, owner int64, names ...string) ([]float64, error) {
	rows, err := s.engine.store.List(ctx, s.name, owner, store.Query{OrderBy: store.OrderByID})
	if err != nil {
		return nil, err
	}
	latest := make(map[string]float64, len(rows))
	for _, c := range rows {
		latest[c.Name] = c.Value
	}

	out := make([]float64, len(names))
	var errs []error
	for i, n := range names {
		v, ok := latest[n]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s!%s (owner %d)", sheet.ErrCellNotFound, s.name, n, owner))
			continue
		}
		out[i] = v
	}
	return out, errors.Join(errs...)
}
