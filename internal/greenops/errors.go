package greenops

type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors, comparable with errors.Is.
var (
	// ErrInvalidUnit is returned for a unit no normalizer knows.
	ErrInvalidUnit = constError("invalid unit")

	// ErrNegativeValue is returned for negative quantities.
	ErrNegativeValue = constError("negative value")

	// ErrCalculationOverflow is returned when a value or result is not finite.
	ErrCalculationOverflow = constError("calculation overflow")
)
