package curve

import (
	"strconv"
	"strings"

	"polyfit/internal/unc"
)

// LabelOptions controls label rendering. LaTeX defaults to false: callers
// drawing with a TeX text renderer must ask for it.
type LabelOptions struct {
	LaTeX bool
	// Fixed disables scientific notation in the coefficients.
	Fixed bool
}

// Label renders a dense polynomial, params[0] being the coefficient of
// x^(len-1) and the last one the constant, as "y = … + … + …".
func Label(params []unc.Measurement, opts LabelOptions) string {
	powers := make([]int, len(params))
	for i := range params {
		powers[i] = len(params) - 1 - i
	}
	return label(params, powers, opts)
}

// Label renders the fitted polynomial with the powers of its mask.
func (r *Result) Label(opts LabelOptions) string {
	return label(r.Params, r.obj.Powers(), opts)
}

func label(params []unc.Measurement, powers []int, opts LabelOptions) string {
	terms := make([]string, len(params))
	for i, p := range params {
		fo := unc.FormatOptions{LaTeX: opts.LaTeX, Fixed: opts.Fixed, Bracket: powers[i] != 0}
		coef := unc.Format(p, fo)
		switch powers[i] {
		case 0:
			terms[i] = coef
		case 1:
			terms[i] = coef + "x"
		default:
			terms[i] = coef + xPow(powers[i], opts.LaTeX)
		}
	}
	return "y = " + strings.Join(terms, " + ")
}

func xPow(p int, latex bool) string {
	if latex {
		return "x$^{" + strconv.Itoa(p) + "}$"
	}
	return "x^" + strconv.Itoa(p)
}
