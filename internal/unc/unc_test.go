package unc

import (
	"math"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasurementArithmetic(t *testing.T) {
	a := New(3, 0.3)
	b := New(4, -0.4)

	sum := a.Add(b)
	assert.InDelta(t, 7.0, sum.Value, 1e-12)
	assert.InDelta(t, 0.5, sum.Err, 1e-12)

	diff := a.Sub(b)
	assert.InDelta(t, -1.0, diff.Value, 1e-12)
	assert.InDelta(t, 0.5, diff.Err, 1e-12)

	sc := a.Scale(-2)
	assert.InDelta(t, -6.0, sc.Value, 1e-12)
	assert.InDelta(t, 0.6, sc.Err, 1e-12)

	shifted := a.AddConst(1)
	assert.Equal(t, Measurement{Value: 4, Err: 0.3}, shifted)
	assert.Equal(t, 0.0, Exact(2).Err)
}

func TestDegenerate(t *testing.T) {
	assert.False(t, New(1, 1).Degenerate())
	assert.True(t, New(1, math.Inf(1)).Degenerate())
	assert.True(t, New(1, math.NaN()).Degenerate())
	assert.True(t, New(1, math.Inf(1)).Add(New(2, 1)).Degenerate())
}

func TestDecimals(t *testing.T) {
	cases := []struct {
		name       string
		value, err float64
		want       int
	}{
		{"LeadingOne", 1, 1, 1},
		{"Plain", 3, 0.1, 1},
		{"LeadingOneSmallErr", 150, 10, 2},
		{"ErrLargerThanValue", 3, 50, 0},
		{"ZeroErr", 3.14159, 0, 0},
		{"ZeroValue", 0, 0.2, 0},
		{"Negative", -2.5, 0.5, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decimals(tc.value, tc.err))
		})
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		name string
		m    Measurement
		opts FormatOptions
		want string
	}{
		{"OneDecimal", New(1, 1), FormatOptions{}, "1.0 ± 1.0"},
		{"BracketLaTeX", New(1, 1), FormatOptions{LaTeX: true, Bracket: true}, `$\left( 1.0 \pm 1.0 \right)$`},
		{"LaTeX", New(2.5, 0.5), FormatOptions{LaTeX: true}, `$2.5 \pm 0.5$`},
		{"Exponent", New(300, 10), FormatOptions{}, "(3.0 ± 0.1)×10^2"},
		{"ExponentLaTeX", New(0.003, 0.0001), FormatOptions{LaTeX: true}, `$\left(3.0 \pm 0.1\right) \times 10^{-3}$`},
		{"FixedSuppressesExponent", New(300, 10), FormatOptions{Fixed: true}, "300.0 ± 10.0"},
		{"ZeroErr", New(12345.678, 0), FormatOptions{}, "12346 ± 0"},
		{"ZeroBoth", New(0, 0), FormatOptions{LaTeX: true}, `$0 \pm 0$`},
		{"InfErr", New(3, math.Inf(1)), FormatOptions{Bracket: true}, "(3 ± inf)"},
		{"NaNErr", New(0.5, math.NaN()), FormatOptions{}, "0.5 ± NaN"},
		{"InfErrLongValue", New(1.9999999999999452, math.Inf(1)), FormatOptions{Bracket: true}, "(2 ± inf)"},
		{"InfErrSixDigits", New(-1234.56789, math.Inf(1)), FormatOptions{}, "-1234.57 ± inf"},
		{"InfValue", Measurement{Value: math.Inf(-1), Err: 0.123456789}, FormatOptions{}, "-inf ± 0.123457"},
		{"RoundingCarriesToExponent", New(9.96, 0.5), FormatOptions{}, "(1.00 ± 0.05)×10^1"},
		{"RoundingCarriesExponent", New(99.6, 5), FormatOptions{}, "(1.00 ± 0.05)×10^2"},
		{"RoundingCarriesNegative", New(-0.0996, 0.005), FormatOptions{LaTeX: true}, `$\left(-1.00 \pm 0.05\right) \times 10^{-1}$`},
		{"RoundingCarryFixed", New(9.96, 0.5), FormatOptions{Fixed: true}, "10.0 ± 0.5"},
		{"NoCarry", New(9.94, 0.5), FormatOptions{}, "9.9 ± 0.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Format(tc.m, tc.opts))
		})
	}
}

func TestMarshalJSONNonFinite(t *testing.T) {
	b, err := json.Marshal([]Measurement{New(1.5, 0.25), New(2, math.Inf(1))})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"value":1.5,"err":0.25},{"value":2,"err":"+Inf"}]`, string(b))
}

func TestNominalsErrors(t *testing.T) {
	ms := []Measurement{New(1, 0.1), New(2, 0.2)}
	assert.Equal(t, []float64{1, 2}, Nominals(ms))
	assert.Equal(t, []float64{0.1, 0.2}, Errors(ms))
}
