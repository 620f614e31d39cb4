// Package greenops translates the footprint of a coffee simulation into
// figures people recognize: kilometres driven, smartphone charges and tree
// seedlings. It also normalizes carbon, energy and water quantities to the
// base units used by the result sheets (kg CO2e, kWh and litres).
package greenops

import "fmt"

// EquivalencyType is a category of carbon equivalency.
type EquivalencyType int

const (
	// EquivalencyKilometresDriven is distance driven in an average car.
	EquivalencyKilometresDriven EquivalencyType = iota

	// EquivalencySmartphonesCharged is full smartphone charges.
	EquivalencySmartphonesCharged

	// EquivalencyTreeSeedlings is seedlings grown for ten years.
	EquivalencyTreeSeedlings
)

func (e EquivalencyType) String() string {
	switch e {
	case EquivalencyKilometresDriven:
		return "KilometresDriven"
	case EquivalencySmartphonesCharged:
		return "SmartphonesCharged"
	case EquivalencyTreeSeedlings:
		return "TreeSeedlings"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", e)
	}
}

// Kind is the physical dimension of a Quantity.
type Kind int

// Quantity kinds.
const (
	KindCarbon Kind = iota
	KindEnergy
	KindWater
)

func (k Kind) String() string {
	switch k {
	case KindCarbon:
		return "carbon"
	case KindEnergy:
		return "energy"
	case KindWater:
		return "water"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Quantity is a measured amount with its unit.
type Quantity struct {
	Value float64 `json:"value"`

	// Unit is one of g, kg, t, lb (optionally with a CO2e suffix), Wh, kWh,
	// MWh, MJ, GJ, L or m3.
	Unit string `json:"unit"`
}

// EquivalencyResult is one calculated equivalency.
type EquivalencyResult struct {
	Type           EquivalencyType `json:"type"`
	Value          float64         `json:"value"`
	FormattedValue string          `json:"formatted_value"`
	Label          string          `json:"label"`
}

// EquivalencyOutput holds every equivalency for one footprint.
type EquivalencyOutput struct {
	// InputKg is the footprint in kg CO2e.
	InputKg float64 `json:"input_kg"`

	Results []EquivalencyResult `json:"results"`

	// DisplayText is a full sentence, e.g.
	// "Equivale a rodar ~1.243 km, carregar ~18.248 smartphones ou plantar ~3 mudas".
	DisplayText string `json:"display_text"`

	// CompactText fits in a table cell, e.g. "(≈ 1.243 km, 18.248 cargas)".
	CompactText string `json:"compact_text"`

	IsEmpty bool `json:"is_empty"`
}
