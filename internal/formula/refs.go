package formula

import (
	"regexp"
	"strconv"
	"strings"
)

// refPattern matches a reference on identifier boundaries so that A1 never
// matches inside AA1 or A12.
var refPattern = regexp.MustCompile(`\b(?:([A-Za-z_]+)!)?([A-Z]{1,2}[0-9]+)\b`) //nolint:gochecknoglobals // Compiled once.

// Normalize rewrites comma decimal separators as periods.
func Normalize(expr string) string {
	return strings.ReplaceAll(expr, ",", ".")
}

// References returns the references in expr in order of first appearance,
// without duplicates.
func References(expr string) []Ref {
	matches := refPattern.FindAllStringSubmatch(Normalize(expr), -1)
	seen := make(map[Ref]bool, len(matches))
	refs := make([]Ref, 0, len(matches))
	for _, m := range matches {
		r := Ref{Sheet: m[1], Name: m[2]}
		if seen[r] {
			continue
		}
		seen[r] = true
		refs = append(refs, r)
	}
	return refs
}

// Resolve substitutes every reference in expr with its current value.
// Missing references become 0 and are reported as warnings. Negative values
// are parenthesized so the substituted text parses to the same expression.
func Resolve(expr string, lookup Lookup) (string, []Warning) {
	var warnings []Warning
	out := refPattern.ReplaceAllStringFunc(Normalize(expr), func(tok string) string {
		ref := ParseRef(tok)
		v, ok := lookup.Value(ref)
		if !ok {
			warnings = append(warnings, Warning{Code: WarnMissingReference, Ref: ref.String()})
			v = 0
		}
		return formatOperand(v)
	})
	return out, warnings
}

// formatOperand writes v as the shortest decimal that round-trips.
func formatOperand(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if v < 0 {
		return "(" + s + ")"
	}
	return s
}
