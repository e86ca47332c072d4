package data

import "math"

// Series is a set of (x, y) samples in column form.
type Series struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

func (s Series) Len() int { return len(s.X) }

// Synthetic describes a noisy polynomial sample set.
type Synthetic struct {
	// Coeffs are the polynomial coefficients, highest power first.
	Coeffs []float64
	N      int
	XMin   float64
	XMax   float64
	// Noise is the standard deviation of the Gaussian noise added to y.
	Noise float64
	Seed  int64
}

// Finite returns the samples where both x and y are finite, and how many
// were dropped.
func (s Series) Finite() (Series, int) {
	out := Series{X: make([]float64, 0, len(s.X)), Y: make([]float64, 0, len(s.Y))}
	for i := range s.X {
		if isFinite(s.X[i]) && isFinite(s.Y[i]) {
			out.X = append(out.X, s.X[i])
			out.Y = append(out.Y, s.Y[i])
		}
	}
	return out, len(s.X) - len(out.X)
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
