package greenops

import (
	"math"

	"github.com/pegada/calcpc/internal/locale"
)

//nolint:gochecknoglobals // Built once from the default locale.
var formatter = locale.NewFormatter(locale.DefaultTag)

// FormatNumber formats an integer with pt-BR thousands separators:
// 18248 is "18.248".
func FormatNumber(n int64) string {
	return formatter.Int(n)
}

// FormatFloat formats f rounded to precision decimals: "1.234,57".
func FormatFloat(f float64, precision int) string {
	return formatter.Float(f, precision)
}

// FormatLarge abbreviates millions and billions ("~1,5 mi", "~2,0 bi") and
// formats smaller values as integers.
func FormatLarge(n float64) string {
	switch {
	case n >= BillionThreshold:
		return "~" + formatter.Float(n/BillionThreshold, 1) + " bi"
	case n >= LargeNumberThreshold:
		return "~" + formatter.Float(n/LargeNumberThreshold, 1) + " mi"
	default:
		return FormatNumber(int64(math.Round(n)))
	}
}
