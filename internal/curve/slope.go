package curve

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"polyfit/internal/unc"
)

// slopeSpan is the range both axes are mapped to before fitting.
const slopeSpan = 10

// NormalizedSlope fits y = m·x + c after mapping both axes onto [0, 10] and
// returns m in the original units. Pairs with a NaN on either side are
// dropped first.
func NormalizedSlope(x, y []float64) (unc.Measurement, error) {
	if len(x) != len(y) {
		return unc.Measurement{}, fitErrorf("x has %d values, y has %d", len(x), len(y))
	}
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return unc.Measurement{}, fitErrorf("%d usable pairs, need at least 2", len(xs))
	}

	xlo, xhi := floats.Min(xs), floats.Max(xs)
	ylo, yhi := floats.Min(ys), floats.Max(ys)
	xrange, yrange := xhi-xlo, yhi-ylo
	if xrange == 0 || yrange == 0 {
		return unc.Measurement{}, fitErrorf("zero range (x %g, y %g)", xrange, yrange)
	}
	for i := range xs {
		xs[i] = (xs[i] - xlo) / xrange * slopeSpan
		ys[i] = (ys[i] - ylo) / yrange * slopeSpan
	}

	params, _, err := Fit(xs, ys, Lin)
	if err != nil {
		return unc.Measurement{}, err
	}
	return params[0].Scale(yrange / xrange), nil
}
