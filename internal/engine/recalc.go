package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/pegada/calcpc/internal/formula"
	"github.com/pegada/calcpc/internal/logging"
	"github.com/pegada/calcpc/internal/sheet"
)

// Report summarizes one recalculation pass.
type Report struct {
	RunID string `json:"run_id"`
	Sheet string `json:"sheet"`
	Owner int64  `json:"owner"`

	// Computed counts the derived cells evaluated.
	Computed int `json:"computed"`

	Warnings []formula.Warning `json:"warnings,omitempty"`

	// Failed lists cells whose new value could not be persisted.
	Failed []string `json:"failed,omitempty"`

	Duration time.Duration `json:"duration"`
}

// OK reports whether every computed value was persisted.
func (r *Report) OK() bool {
	return r != nil && len(r.Failed) == 0
}

// RecalculateAll recomputes every derived cell of owner's partition and
// persists the results. Evaluation problems become warnings in the report;
// storage failures are returned joined after the pass has visited every cell.
func (s *Sheet) RecalculateAll(ctx context.Context, owner int64) (*Report, error) {
	if owner == sheet.TemplateOwner {
		return nil, fmt.Errorf("%w: recalculate %s", sheet.ErrTemplateOwner, s.name)
	}

	p, err := s.newPass(ctx, owner)
	if err != nil {
		return nil, err
	}

	cells := p.derived()
	if s.engine.ordering == OrderTopological {
		cells, err = newGraph(s.name, s.engine.linkSource, cells).order()
		if err != nil {
			return nil, err
		}
	}

	failed, resetErr := p.resetSelections()
	report, err := p.run(cells)
	report.Failed = append(failed, report.Failed...)
	err = errors.Join(resetErr, err)

	logger := s.logger(ctx, "RecalculateAll", report.RunID)
	event := logger.Info()
	if err != nil {
		event = logger.Error().Err(err)
	}
	event.
		Int64("owner", owner).
		Int("computed", report.Computed).
		Int("warnings", len(report.Warnings)).
		Dur("duration_ms", report.Duration).
		Msg("recalculation finished")
	return report, err
}

// recalculateAfterEdit recomputes the cells an edit of name affects.
func (s *Sheet) recalculateAfterEdit(ctx context.Context, owner int64, name string) (*Report, error) {
	p, err := s.newPass(ctx, owner)
	if err != nil {
		return nil, err
	}

	var cells []*sheet.Cell
	if s.engine.ordering == OrderTopological {
		cells, err = newGraph(s.name, s.engine.linkSource, p.derived()).affected(name)
		if err != nil {
			return nil, err
		}
	} else {
		for _, c := range p.derived() {
			if c.Type.Visible() == sheet.TypeConditional && strings.TrimSpace(c.Expression) == name {
				cells = append(cells, c)
			}
		}
	}

	report, err := p.run(cells)
	logger := s.logger(ctx, "recalculateAfterEdit", report.RunID)
	logger.Debug().
		Int64("owner", owner).
		Str("cell", name).
		Int("computed", report.Computed).
		Msg("dependents recalculated")
	return report, err
}

// run computes cells in the given order. A value is written to the snapshot
// before the next cell is computed.
func (p *pass) run(cells []*sheet.Cell) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID: ulid.Make().String(),
		Sheet: p.sh.name,
		Owner: p.owner,
	}

	var errs []error
	for _, c := range cells {
		if err := p.ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res := p.compute(c)
		report.Computed++
		report.Warnings = append(report.Warnings, res.Warnings...)

		if err := p.sh.engine.store.SetValue(p.ctx, p.sh.name, c.Name, p.owner, res.Value); err != nil {
			report.Failed = append(report.Failed, c.Name)
			errs = append(errs, fmt.Errorf("cell %s: %w", c.Name, err))
			continue
		}
		c.Value = res.Value
	}

	report.Duration = time.Since(start)
	if err := p.loadErr(); err != nil {
		errs = append(errs, err)
	}
	return report, errors.Join(errs...)
}

// resetSelections writes 0 to every selectbox holding another value, so
// rows cloned or inserted with a stale number never feed formulas.
func (p *pass) resetSelections() ([]string, error) {
	var (
		failed []string
		errs   []error
	)
	for _, c := range p.rows {
		if c.Type != sheet.TypeSelectbox || c.Value == 0 || p.cells[c.Name] != c {
			continue
		}
		if err := p.sh.engine.store.SetValue(p.ctx, p.sh.name, c.Name, p.owner, 0); err != nil {
			failed = append(failed, c.Name)
			errs = append(errs, fmt.Errorf("cell %s: %w", c.Name, err))
			continue
		}
		c.Value = 0
	}
	return failed, errors.Join(errs...)
}

func (s *Sheet) logger(ctx context.Context, op, runID string) zerolog.Logger {
	lc := logging.FromContext(ctx).With().
		Str("component", "engine").
		Str("operation", op).
		Str("sheet", s.name)
	if runID != "" {
		lc = lc.Str("run_id", runID)
	}
	return lc.Logger()
}
