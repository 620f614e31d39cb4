// Package locale parses and formats numbers the way users of the calculator
// type and read them: comma decimals and dot thousands (pt-BR) by default.
package locale

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidNumber indicates text that is not a finite number.
var ErrInvalidNumber = errors.New("invalid number")

// DefaultTag is the locale used when none is configured.
//
//nolint:gochecknoglobals // language.Tag values are not constants.
var DefaultTag = language.BrazilianPortuguese

// ParseFloat parses user text into a float.
//
// When the text contains a comma it is treated as the decimal separator and
// every dot is a thousands separator ("1.234,5" is 1234.5). Otherwise the text
// is parsed as a plain period-decimal number. Blank text is 0.
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	norm := s
	if strings.Contains(norm, ",") {
		norm = strings.ReplaceAll(norm, ".", "")
		norm = strings.ReplaceAll(norm, ",", ".")
	}
	v, err := strconv.ParseFloat(norm, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}

// Formatter renders numbers with a locale's separators.
type Formatter struct {
	printer *message.Printer
	decimal string
}

// NewFormatter returns a Formatter for tag.
func NewFormatter(tag language.Tag) *Formatter {
	p := message.NewPrinter(tag)
	// Locales that group with a comma use a period for decimals and vice versa.
	dec := ","
	if strings.Contains(p.Sprintf("%d", 1000), ",") {
		dec = "."
	}
	return &Formatter{printer: p, decimal: dec}
}

// NewFormatterFor parses a BCP 47 tag such as "pt-BR" and returns its Formatter.
func NewFormatterFor(tag string) (*Formatter, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %q: %w", tag, err)
	}
	return NewFormatter(t), nil
}

// Int formats n with thousands separators.
func (f *Formatter) Int(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// Float formats v rounded to precision decimals, e.g. 1234.5 with precision 2
// is "1.234,50" in pt-BR.
func (f *Formatter) Float(v float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	const base = 10
	multiplier := math.Pow(base, float64(precision))
	rounded := math.Round(v*multiplier) / multiplier

	sign := ""
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}

	formatted := strconv.FormatFloat(rounded, 'f', precision, 64)
	intPart, fracPart, _ := strings.Cut(formatted, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return sign + formatted
	}

	out := sign + f.Int(n)
	if precision > 0 {
		out += f.decimal + fracPart
	}
	return out
}

// DecimalSeparator returns the separator Float writes before the fraction.
func (f *Formatter) DecimalSeparator() string {
	return f.decimal
}

//nolint:gochecknoglobals // Shared default formatter, built once.
var defaultFormatter = NewFormatter(DefaultTag)

// Format renders v with the default locale.
func Format(v float64, precision int) string {
	return defaultFormatter.Float(v, precision)
}
