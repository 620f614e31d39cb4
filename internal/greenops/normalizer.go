package greenops

import (
	"math"
	"strings"
)

type unitFactor struct {
	kind   Kind
	factor float64
}

//nolint:gochecknoglobals // Compile-time constant lookup table.
var units = map[string]unitFactor{
	"g":      {KindCarbon, GramsToKg},
	"gco2e":  {KindCarbon, GramsToKg},
	"kg":     {KindCarbon, KgToKg},
	"kgco2e": {KindCarbon, KgToKg},
	"t":      {KindCarbon, TonsToKg},
	"tco2e":  {KindCarbon, TonsToKg},
	"lb":     {KindCarbon, PoundsToKg},
	"lbco2e": {KindCarbon, PoundsToKg},

	"wh":  {KindEnergy, WhToKWh},
	"kwh": {KindEnergy, KWhToKWh},
	"mwh": {KindEnergy, MWhToKWh},
	"mj":  {KindEnergy, MJToKWh},
	"gj":  {KindEnergy, GJToKWh},

	"l":  {KindWater, LToL},
	"m3": {KindWater, M3ToL},
	"m³": {KindWater, M3ToL},
}

// Normalize converts q to the base unit of its kind: kg CO2e, kWh or
// litres. Units are matched case-insensitively.
func Normalize(q Quantity) (float64, Kind, error) {
	if math.IsInf(q.Value, 0) || math.IsNaN(q.Value) {
		return 0, 0, ErrCalculationOverflow
	}
	if q.Value < 0 {
		return 0, 0, ErrNegativeValue
	}
	u, ok := units[strings.ToLower(strings.TrimSpace(q.Unit))]
	if !ok {
		return 0, 0, ErrInvalidUnit
	}
	v := q.Value * u.factor
	if math.IsInf(v, 0) {
		return 0, 0, ErrCalculationOverflow
	}
	return v, u.kind, nil
}

// NormalizeTo converts q to the base unit of kind and fails with
// ErrInvalidUnit when q is of another kind.
func NormalizeTo(q Quantity, kind Kind) (float64, error) {
	v, k, err := Normalize(q)
	if err != nil {
		return 0, err
	}
	if k != kind {
		return 0, ErrInvalidUnit
	}
	return v, nil
}

// NormalizeToKg converts a carbon value to kilograms.
func NormalizeToKg(value float64, unit string) (float64, error) {
	return NormalizeTo(Quantity{Value: value, Unit: unit}, KindCarbon)
}

// IsRecognizedUnit reports whether any normalizer knows unit.
func IsRecognizedUnit(unit string) bool {
	_, ok := units[strings.ToLower(strings.TrimSpace(unit))]
	return ok
}
