package figure

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyfit/internal/curve"
	"polyfit/internal/unc"
)

func TestBandXYs(t *testing.T) {
	xs := []float64{0, 1}
	ys := []unc.Measurement{unc.New(1, 0.5), unc.New(2, 0.25)}
	pts := bandXYs(xs, ys)
	require.Len(t, pts, 4)
	assert.Equal(t, 1.5, pts[0].Y)
	assert.Equal(t, 2.25, pts[1].Y)
	assert.Equal(t, 1.75, pts[2].Y)
	assert.Equal(t, 1.0, pts[2].X)
	assert.Equal(t, 0.5, pts[3].Y)
}

func TestPolyFit_WritesPNG(t *testing.T) {
	x := []float64{-0.1, 0.5, 1.0, 1.5, 2.3, 2.9, 3.5}
	y := []float64{-0.7, 0.1, 0.3, 1.1, 1.5, 2.3, 2.2}
	res, err := curve.FitWith(x, y, curve.Lin, curve.Options{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "fit.png")
	require.NoError(t, PolyFit(path, x, y, res, DefaultOptions()))
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, st.Size())
}

func TestPolyFit_DegenerateSkipsBand(t *testing.T) {
	x := []float64{2, 2, 2}
	y := []float64{1, 2, 3}
	res, err := curve.FitWith(x, y, curve.Lin, curve.Options{})
	require.NoError(t, err)

	_, ys := res.Curve(0.05, 10)
	assert.True(t, degenerate(ys))

	path := filepath.Join(t.TempDir(), "degenerate.svg")
	require.NoError(t, PolyFit(path, x, y, res, DefaultOptions()))
}

func TestCompare_WritesPNG(t *testing.T) {
	x := curve.Linspace(-1, 1, 12)
	y := make([]float64, len(x))
	for i := range x {
		y[i] = x[i]*x[i]*x[i] - x[i]
	}
	var fits []Named
	for _, m := range []curve.Model{curve.Lin, curve.Cubic} {
		res, err := curve.FitWith(x, y, m, curve.Options{})
		require.NoError(t, err)
		fits = append(fits, Named{Name: string(m), Result: res})
	}
	path := filepath.Join(t.TempDir(), "compare.png")
	require.NoError(t, Compare(path, x, y, fits, DefaultOptions()))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
