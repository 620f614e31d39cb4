package greenops

import (
	"fmt"
	"math"
)

// Calculate converts a carbon quantity into equivalencies.
//
// Footprints below MinEquivalencyThresholdKg give an empty output and no
// error. Non-carbon units fail with ErrInvalidUnit.
func Calculate(input Quantity) (EquivalencyOutput, error) {
	kg, err := NormalizeTo(input, KindCarbon)
	if err != nil {
		return EquivalencyOutput{IsEmpty: true}, err
	}
	return CalculateKg(kg)
}

// CalculateKg computes equivalencies for kg CO2e.
func CalculateKg(kg float64) (EquivalencyOutput, error) {
	if math.IsInf(kg, 0) || math.IsNaN(kg) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}
	if kg < MinEquivalencyThresholdKg {
		return EquivalencyOutput{InputKg: kg, IsEmpty: true}, nil
	}

	km := kg / KilometreDrivenFactor
	phones := kg / SmartphoneChargeFactor
	trees := kg / TreeSeedlingFactor
	if math.IsInf(km, 0) || math.IsInf(phones, 0) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}

	kmText := formatEquivalencyValue(km)
	phonesText := formatEquivalencyValue(phones)
	treesText := formatEquivalencyValue(math.Ceil(trees))

	return EquivalencyOutput{
		InputKg: kg,
		Results: []EquivalencyResult{
			{Type: EquivalencyKilometresDriven, Value: km, FormattedValue: kmText, Label: "km rodados"},
			{Type: EquivalencySmartphonesCharged, Value: phones, FormattedValue: phonesText, Label: "smartphones carregados"},
			{Type: EquivalencyTreeSeedlings, Value: trees, FormattedValue: treesText, Label: "mudas de árvore"},
		},
		DisplayText: fmt.Sprintf("Equivale a rodar ~%s km, carregar ~%s smartphones ou plantar ~%s mudas",
			kmText, phonesText, treesText),
		CompactText: fmt.Sprintf("(≈ %s km, %s cargas)", kmText, phonesText),
	}, nil
}

func formatEquivalencyValue(v float64) string {
	if v >= LargeNumberThreshold {
		return FormatLarge(v)
	}
	return FormatNumber(int64(math.Round(v)))
}
