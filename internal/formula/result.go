package formula

import "fmt"

// WarningCode classifies a soft evaluation failure.
type WarningCode string

// Warning codes. None of them aborts a recalculation pass.
const (
	WarnParse            WarningCode = "parse_error"
	WarnMissingReference WarningCode = "missing_reference"
	WarnDivisionByZero   WarningCode = "division_by_zero"
	WarnInvalidDate      WarningCode = "invalid_date"
	WarnNonFinite        WarningCode = "non_finite"
	WarnInvalidNumber    WarningCode = "invalid_number"
	WarnNoMatch          WarningCode = "no_match"
)

// Warning is a non-fatal diagnostic attached to a computed value.
type Warning struct {
	Code WarningCode `json:"code"`

	// Cell is the cell being computed, filled in by the engine.
	Cell string `json:"cell,omitempty"`

	// Ref is the offending reference, when there is one.
	Ref string `json:"ref,omitempty"`

	Detail string `json:"detail,omitempty"`
}

func (w Warning) String() string {
	s := string(w.Code)
	if w.Cell != "" {
		s = w.Cell + ": " + s
	}
	if w.Ref != "" {
		s += fmt.Sprintf(" (%s)", w.Ref)
	}
	if w.Detail != "" {
		s += ": " + w.Detail
	}
	return s
}

// Result is a computed value together with its warnings.
// Value is always finite.
type Result struct {
	Value    float64   `json:"value"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// OK reports whether the value was computed without warnings.
func (r Result) OK() bool {
	return len(r.Warnings) == 0
}

func (r *Result) warn(w Warning) {
	r.Warnings = append(r.Warnings, w)
}
