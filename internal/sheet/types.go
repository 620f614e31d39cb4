// Package sheet defines the row-based cell model shared by the store and the
// formula engine.
//
// A sheet is one relational table. Every row is a named cell owned by a user
// (OwnerID) or by the template partition (TemplateOwner). Cells carry a type
// that decides how the engine computes their value.
package sheet

import "strings"

// TemplateOwner is the owner id of the immutable template partition.
const TemplateOwner int64 = 0

// CellType classifies how a cell's value is produced.
type CellType string

// Cell types understood by the engine.
const (
	TypeInput     CellType = "input"
	TypeDateInput CellType = "date_input"
	TypeFormula   CellType = "formula"
	TypeFormulaH  CellType = "formulaH"

	TypeConditional  CellType = "conditional"
	TypeConditionalH CellType = "conditionalH"

	TypeLookup  CellType = "lookup"
	TypeLookupH CellType = "lookupH"

	TypeLink  CellType = "link"
	TypeLinkH CellType = "linkH"

	TypeSelectbox CellType = "selectbox"
	TypeTitle     CellType = "title"
	TypeSpacer    CellType = "spacer"
)

// legacyTypes maps type names found in older exports onto the canonical set.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var legacyTypes = map[string]CellType{
	"condicao":     TypeConditional,
	"condicaoH":    TypeConditionalH,
	"titulo":       TypeTitle,
	"pula_linha":   TypeSpacer,
	"call_insumos": TypeLookup,
	"call_dados":   TypeLink,
	"input_data":   TypeDateInput,
	"formula_data": TypeFormula,
}

// ParseCellType maps a stored type name onto a CellType.
// Legacy names are translated; unknown names are returned verbatim so the row
// survives a round trip, and IsKnown reports false for them.
func ParseCellType(s string) CellType {
	s = strings.TrimSpace(s)
	if t, ok := legacyTypes[s]; ok {
		return t
	}
	return CellType(s)
}

// IsKnown reports whether the engine understands t.
func (t CellType) IsKnown() bool {
	switch t {
	case TypeInput, TypeDateInput, TypeFormula, TypeFormulaH,
		TypeConditional, TypeConditionalH, TypeLookup, TypeLookupH,
		TypeLink, TypeLinkH, TypeSelectbox, TypeTitle, TypeSpacer:
		return true
	default:
		return false
	}
}

// IsHidden reports whether cells of this type are computed but never listed.
func (t CellType) IsHidden() bool {
	switch t {
	case TypeFormulaH, TypeConditionalH, TypeLookupH, TypeLinkH:
		return true
	default:
		return false
	}
}

// IsDerived reports whether the engine computes the value of cells of this type.
func (t CellType) IsDerived() bool {
	switch t {
	case TypeFormula, TypeFormulaH,
		TypeConditional, TypeConditionalH,
		TypeLookup, TypeLookupH,
		TypeLink, TypeLinkH:
		return true
	default:
		return false
	}
}

// IsEditable reports whether user input may be written to cells of this type.
func (t CellType) IsEditable() bool {
	return t == TypeInput || t == TypeDateInput || t == TypeSelectbox
}

// Visible returns t without its hidden marker, e.g. formulaH becomes formula.
func (t CellType) Visible() CellType {
	if t.IsHidden() {
		return CellType(strings.TrimSuffix(string(t), "H"))
	}
	return t
}
