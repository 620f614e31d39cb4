package sheet

import (
	"fmt"
	"regexp"
)

// Sheets used by the coffee calculator.
const (
	// Forms is the data-entry sheet.
	Forms = "forms_tab"

	// Coefficients is the reference sheet read by lookup and conditional cells.
	Coefficients = "forms_insumos"

	// CompanyResults is the company simulation including the agricultural stage.
	CompanyResults = "forms_resultados"

	// CompanyResultsNoFarm is the company simulation without the agricultural stage.
	CompanyResultsNoFarm = "forms_result_sea"

	// SectorResults is the sector benchmark including the agricultural stage.
	SectorResults = "forms_setorial"

	// SectorResultsNoFarm is the sector benchmark without the agricultural stage.
	SectorResultsNoFarm = "forms_setorial_sea"

	// EnergyAnalysis is the energy analysis sheet.
	EnergyAnalysis = "forms_energetica"
)

// KnownSheets returns the calculator's sheets in seeding order.
func KnownSheets() []string {
	return []string{
		Coefficients, Forms,
		CompanyResults, CompanyResultsNoFarm,
		SectorResults, SectorResultsNoFarm,
		EnergyAnalysis,
	}
}

const maxSheetNameLength = 63

var sheetNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`) //nolint:gochecknoglobals // Compiled once.

// ValidateSheetName returns ErrInvalidSheetName unless name is a lowercase
// identifier that is safe to use as a table name.
func ValidateSheetName(name string) error {
	if len(name) > maxSheetNameLength || !sheetNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidSheetName, name)
	}
	return nil
}
