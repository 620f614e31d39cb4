// Package formula parses and evaluates cell expressions.
//
// Expressions are restricted to numeric literals, cell references
// (one or two uppercase letters followed by digits, optionally qualified as
// "Sheet!A1"), the four arithmetic operators, unary sign and parentheses.
// Evaluation never fails: problems are reported as Warnings on the Result and
// the value falls back to 0.
package formula

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pegada/calcpc/internal/sheet"
)

// DefaultEpsilon is the divisor magnitude below which division yields 0.
const DefaultEpsilon = 1e-10

// Lookup supplies the current state of referenced cells.
type Lookup interface {
	// Value returns the numeric value of ref and whether it exists.
	Value(ref Ref) (float64, bool)

	// Text returns the text value of ref and whether it exists.
	Text(ref Ref) (string, bool)
}

//nolint:gochecknoglobals // Compiled once.
var (
	numericPattern  = regexp.MustCompile(`^[+-]?[0-9]+(?:[.,][0-9]+)?$`)
	dateDiffPattern = regexp.MustCompile(`^\s*([A-Z]{1,2}[0-9]+)\s*-\s*([A-Z]{1,2}[0-9]+)\s*$`)
)

// Evaluator computes expression values.
type Evaluator struct {
	epsilon float64
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithEpsilon sets the division guard threshold. Non-positive values are ignored.
func WithEpsilon(eps float64) Option {
	return func(e *Evaluator) {
		if eps > 0 {
			e.epsilon = eps
		}
	}
}

// NewEvaluator returns an Evaluator with the given options applied.
func NewEvaluator(opts ...Option) *Evaluator {
	e := &Evaluator{epsilon: DefaultEpsilon}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Epsilon returns the configured division guard.
func (e *Evaluator) Epsilon() float64 {
	return e.epsilon
}

// DateDifference reports whether expr is the date-difference form
// "<final> - <initial>" and returns both operands.
func DateDifference(expr string) (final, initial Ref, ok bool) {
	m := dateDiffPattern.FindStringSubmatch(expr)
	if m == nil {
		return Ref{}, Ref{}, false
	}
	return Ref{Name: m[1]}, Ref{Name: m[2]}, true
}

// Evaluate computes expr against lookup.
//
// A plain number is returned as is. An expression of exactly two bare
// references separated by '-' is a date difference: both operands' text
// values are read as dd/mm/yyyy dates and the result is the elapsed months,
// never negative. Everything else is parsed and evaluated arithmetically.
func (e *Evaluator) Evaluate(expr string, lookup Lookup) Result {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return Result{}
	}

	if numericPattern.MatchString(trimmed) {
		v, err := strconv.ParseFloat(Normalize(trimmed), 64)
		if err != nil {
			return Result{Warnings: []Warning{{Code: WarnParse, Detail: err.Error()}}}
		}
		return finite(Result{Value: v})
	}

	if final, initial, ok := DateDifference(trimmed); ok {
		return e.dateDifference(final, initial, lookup)
	}

	node, err := Parse(trimmed)
	if err != nil {
		return Result{Warnings: []Warning{{Code: WarnParse, Detail: err.Error()}}}
	}
	return e.EvaluateNode(node, lookup)
}

// EvaluateNode computes an already parsed expression.
func (e *Evaluator) EvaluateNode(node Node, lookup Lookup) Result {
	ev := &evaluation{epsilon: e.epsilon, lookup: lookup}
	ev.result.Value = node.eval(ev)
	return finite(ev.result)
}

func (e *Evaluator) dateDifference(final, initial Ref, lookup Lookup) Result {
	var res Result
	days := func(ref Ref) int {
		text, _ := lookup.Text(ref)
		n, err := sheet.ParseDayCount(text)
		if err != nil {
			res.warn(Warning{Code: WarnInvalidDate, Ref: ref.String(), Detail: err.Error()})
			return 0
		}
		return n
	}
	finalDays := days(final)
	initialDays := days(initial)

	months := float64(finalDays-initialDays) / sheet.AverageMonthDays
	res.Value = math.Max(0, months)
	return finite(res)
}

func finite(r Result) Result {
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		r.Value = 0
		r.warn(Warning{Code: WarnNonFinite})
	}
	return r
}

type evaluation struct {
	epsilon float64
	lookup  Lookup
	result  Result
}

func (n *numberNode) eval(_ *evaluation) float64 {
	return n.value
}

func (n *refNode) eval(ev *evaluation) float64 {
	if ev.lookup == nil {
		ev.result.warn(Warning{Code: WarnMissingReference, Ref: n.ref.String()})
		return 0
	}
	v, ok := ev.lookup.Value(n.ref)
	if !ok {
		ev.result.warn(Warning{Code: WarnMissingReference, Ref: n.ref.String()})
		return 0
	}
	return v
}

func (n *unaryNode) eval(ev *evaluation) float64 {
	v := n.operand.eval(ev)
	if n.negate {
		return -v
	}
	return v
}

func (n *binaryNode) eval(ev *evaluation) float64 {
	l := n.left.eval(ev)
	r := n.right.eval(ev)
	switch n.op {
	case TokenPlus:
		return l + r
	case TokenMinus:
		return l - r
	case TokenStar:
		return l * r
	case TokenSlash:
		if math.Abs(r) < ev.epsilon {
			ev.result.warn(Warning{Code: WarnDivisionByZero, Detail: n.String()})
			return 0
		}
		return l / r
	default:
		return 0
	}
}
