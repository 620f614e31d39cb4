package locale_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/pegada/calcpc/internal/locale"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    float64
		wantErr bool
	}{
		{name: "comma decimal", in: "3,5", want: 3.5},
		{name: "thousands and comma", in: "1.234,56", want: 1234.56},
		{name: "period decimal", in: "3.5", want: 3.5},
		{name: "integer", in: "42", want: 42},
		{name: "negative", in: "-0,25", want: -0.25},
		{name: "blank", in: "  ", want: 0},
		{name: "letters", in: "abc", wantErr: true},
		{name: "nan", in: "NaN", wantErr: true},
		{name: "inf", in: "Inf", wantErr: true},
		{name: "two commas", in: "1,2,3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := locale.ParseFloat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, locale.ErrInvalidNumber)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestFormatter_Float(t *testing.T) {
	br := locale.NewFormatter(language.BrazilianPortuguese)
	en := locale.NewFormatter(language.English)

	assert.Equal(t, "1.234,50", br.Float(1234.5, 2))
	assert.Equal(t, "1,234.50", en.Float(1234.5, 2))
	assert.Equal(t, "-0,50", br.Float(-0.5, 2))
	assert.Equal(t, "0,00", br.Float(-0.001, 2))
	assert.Equal(t, "1.235", br.Float(1234.5, 0))
	assert.Equal(t, ",", br.DecimalSeparator())
}

func TestFormat_RoundTrip(t *testing.T) {
	for _, v := range []float64{3.5, 1234.56, -98765.43, 0} {
		got, err := locale.ParseFloat(locale.Format(v, 2))
		require.NoError(t, err)
		assert.InDelta(t, v, got, 1e-9)
	}
}

func TestNewFormatterFor(t *testing.T) {
	f, err := locale.NewFormatterFor("pt-BR")
	require.NoError(t, err)
	assert.Equal(t, "10.000", f.Int(10000))

	_, err = locale.NewFormatterFor("not a tag!")
	require.Error(t, err)
}
