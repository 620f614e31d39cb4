// Package engine evaluates sheets: it clones the template into an owner's
// partition, computes derived cells and applies user edits.
//
// All operations take the owner explicitly. Within one owner's pass the
// engine is single threaded; different owners are independent.
package engine

import (
	"fmt"

	"github.com/pegada/calcpc/internal/formula"
	"github.com/pegada/calcpc/internal/locale"
	"github.com/pegada/calcpc/internal/sheet"
	"github.com/pegada/calcpc/internal/store"
)

// Ordering selects how a full pass orders derived cells.
type Ordering int

const (
	// OrderInsertion evaluates derived cells by ascending row id.
	OrderInsertion Ordering = iota

	// OrderTopological evaluates derived cells after everything they
	// reference and rejects cyclic sheets.
	OrderTopological
)

func (o Ordering) String() string {
	switch o {
	case OrderInsertion:
		return "insertion"
	case OrderTopological:
		return "topological"
	default:
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
}

// ParseOrdering maps "insertion" or "topological" onto an Ordering.
func ParseOrdering(s string) (Ordering, error) {
	switch s {
	case "", "insertion":
		return OrderInsertion, nil
	case "topological":
		return OrderTopological, nil
	default:
		return OrderInsertion, fmt.Errorf("unknown ordering %q", s)
	}
}

// Default settings.
const (
	DefaultMaxColumns     = 6
	DefaultPrecision      = 2
	DefaultReferenceAlias = "Insumos"
)

// Engine evaluates sheets stored in a Store.
type Engine struct {
	store     store.Store
	evaluator *formula.Evaluator

	ordering       Ordering
	epsilon        float64
	referenceSheet string
	referenceAlias string
	linkSource     string
	maxColumns     int
	formatter      *locale.Formatter
	precision      int
}

// Option configures an Engine.
type Option func(*Engine)

// WithOrdering sets the full-pass ordering.
func WithOrdering(o Ordering) Option {
	return func(e *Engine) { e.ordering = o }
}

// WithEpsilon sets the division guard threshold.
func WithEpsilon(eps float64) Option {
	return func(e *Engine) {
		if eps > 0 {
			e.epsilon = eps
		}
	}
}

// WithReferenceSheet sets the coefficient sheet and the alias formulas use
// to reach it ("Insumos!C4").
func WithReferenceSheet(name, alias string) Option {
	return func(e *Engine) {
		if name != "" {
			e.referenceSheet = name
		}
		if alias != "" {
			e.referenceAlias = alias
		}
	}
}

// WithLinkSource sets the sheet read by link cells whose target has no sheet.
func WithLinkSource(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.linkSource = name
		}
	}
}

// WithMaxColumns sets the widest valid layout column.
func WithMaxColumns(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxColumns = n
		}
	}
}

// WithFormatter sets how values are rendered into display text.
func WithFormatter(f *locale.Formatter, precision int) Option {
	return func(e *Engine) {
		if f != nil {
			e.formatter = f
		}
		if precision >= 0 {
			e.precision = precision
		}
	}
}

// New returns an Engine over s.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:          s,
		ordering:       OrderInsertion,
		epsilon:        formula.DefaultEpsilon,
		referenceSheet: sheet.Coefficients,
		referenceAlias: DefaultReferenceAlias,
		linkSource:     sheet.Forms,
		maxColumns:     DefaultMaxColumns,
		formatter:      locale.NewFormatter(locale.DefaultTag),
		precision:      DefaultPrecision,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.evaluator = formula.NewEvaluator(formula.WithEpsilon(e.epsilon))
	return e
}

// Store returns the underlying store.
func (e *Engine) Store() store.Store {
	return e.store
}

// Ordering returns the configured full-pass ordering.
func (e *Engine) Ordering() Ordering {
	return e.ordering
}

// Sheet returns a handle for operations on one sheet.
func (e *Engine) Sheet(name string) (*Sheet, error) {
	if err := sheet.ValidateSheetName(name); err != nil {
		return nil, err
	}
	return &Sheet{engine: e, name: name}, nil
}

// Sheet is the engine bound to one sheet.
type Sheet struct {
	engine *Engine
	name   string
}

// Name returns the sheet name.
func (s *Sheet) Name() string {
	return s.name
}
