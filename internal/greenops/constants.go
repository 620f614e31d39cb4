package greenops

// Equivalency divisors in kg CO2e per unit of activity, from the EPA
// Greenhouse Gas Equivalencies Calculator:
//
//	equivalency = kg_CO2e / factor
const (
	// kgPerMile is the average passenger vehicle.
	kgPerMile = 0.192
	kmPerMile = 1.609344

	// KilometreDrivenFactor is kg CO2e per kilometre driven.
	KilometreDrivenFactor = kgPerMile / kmPerMile

	// SmartphoneChargeFactor is kg CO2e per full smartphone charge.
	SmartphoneChargeFactor = 0.00822

	// TreeSeedlingFactor is kg CO2e absorbed by one seedling grown for 10 years.
	TreeSeedlingFactor = 60.0
)

// Carbon units to kilograms.
const (
	GramsToKg  = 0.001
	KgToKg     = 1.0
	TonsToKg   = 1000.0
	PoundsToKg = 0.453592
)

// Energy units to kilowatt-hours.
const (
	WhToKWh  = 0.001
	KWhToKWh = 1.0
	MWhToKWh = 1000.0
	MJToKWh  = 1 / 3.6
	GJToKWh  = 1000 / 3.6
)

// Water units to litres.
const (
	LToL  = 1.0
	M3ToL = 1000.0
)

// Display thresholds.
const (
	// MinEquivalencyThresholdKg is the smallest footprint worth translating.
	MinEquivalencyThresholdKg = 1.0

	// LargeNumberThreshold switches to "~X,X mi" notation.
	LargeNumberThreshold = 1_000_000

	// BillionThreshold switches to "~X,X bi" notation.
	BillionThreshold = 1_000_000_000
)
