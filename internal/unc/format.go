package unc

import (
	"fmt"
	"math"
	"strconv"
)

// FormatOptions selects how a Measurement is rendered.
type FormatOptions struct {
	// LaTeX renders math-mode output ($...$, \pm, \times). Plain text
	// otherwise.
	LaTeX bool
	// Bracket wraps the whole expression in parentheses.
	Bracket bool
	// Fixed disables scientific notation.
	Fixed bool
}

// Decimals returns the number of decimal places used to show value with
// uncertainty err: log10|value| - log10|err|, rounded half to even, plus one
// when the leading digit of value is 1. Never negative.
func Decimals(value, err float64) int {
	value, err = math.Abs(value), math.Abs(err)
	if value == 0 || err == 0 {
		return 0
	}
	d := int(math.RoundToEven(math.Log10(value) - math.Log10(err)))
	if leadingDigit(value) == '1' {
		d++
	}
	if d < 0 {
		return 0
	}
	return d
}

func leadingDigit(v float64) byte {
	return strconv.FormatFloat(math.Abs(v), 'e', -1, 64)[0]
}

// Format renders m as "value ± err" with the precision chosen by Decimals.
//
// A zero value or zero error is shown with no decimals and never in
// scientific notation. NaN or infinite numbers are printed literally, and a
// finite number next to one is shown to 6 significant digits.
func Format(m Measurement, opts FormatOptions) string {
	v, s := m.Value, math.Abs(m.Err)

	var body string
	switch {
	case !finite(v) || !finite(s):
		body = pair(literal(v), literal(s), opts)
	case v == 0 || s == 0:
		body = pair(fixed(v, 0), fixed(s, 0), opts)
	default:
		d := Decimals(v, s)
		k := 0
		if !opts.Fixed {
			k = int(math.Floor(math.Log10(math.Abs(v))))
			// Rounding to d places can carry the mantissa up to 10.
			if m, _ := strconv.ParseFloat(fixed(v/math.Pow(10, float64(k)), d), 64); math.Abs(m) >= 10 {
				k++
				d++
			}
		}
		if k == 0 {
			body = pair(fixed(v, d), fixed(s, d), opts)
		} else {
			scale := math.Pow(10, float64(k))
			body = exponent(pair(fixed(v/scale, d), fixed(s/scale, d), opts), k, opts)
		}
	}

	switch {
	case opts.LaTeX && opts.Bracket:
		return `$\left( ` + body + ` \right)$`
	case opts.LaTeX:
		return "$" + body + "$"
	case opts.Bracket:
		return "(" + body + ")"
	}
	return body
}

func pair(v, s string, opts FormatOptions) string {
	if opts.LaTeX {
		return v + ` \pm ` + s
	}
	return v + " ± " + s
}

func exponent(body string, k int, opts FormatOptions) string {
	if opts.LaTeX {
		return fmt.Sprintf(`\left(%s\right) \times 10^{%d}`, body, k)
	}
	return fmt.Sprintf("(%s)×10^%d", body, k)
}

func fixed(v float64, d int) string { return strconv.FormatFloat(v, 'f', d, 64) }

func literal(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
