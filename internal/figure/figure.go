// Package figure draws fitted polynomials over their samples with
// gonum/plot.
package figure

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"polyfit/internal/curve"
	"polyfit/internal/unc"
)

var (
	oxBlue   = color.RGBA{R: 0, G: 33, B: 71, A: 255}
	brickRed = color.RGBA{R: 194, G: 24, B: 7, A: 255}
	camBlue  = color.RGBA{R: 163, G: 193, B: 173, A: 128}
)

type Options struct {
	Title  string
	XLabel string
	YLabel string
	// Ext widens the prediction range by this fraction of the data range.
	Ext    float64
	Points int
	Width  vg.Length
	Height vg.Length
	Label  curve.LabelOptions
}

func DefaultOptions() Options {
	return Options{XLabel: "x", YLabel: "y", Ext: 0.05, Points: 50, Width: 6 * vg.Inch, Height: 4 * vg.Inch}
}

// PolyFit saves a figure of the samples, the fitted curve labelled with its
// equation and a ±1σ band. The band is left out when the fit is degenerate.
func PolyFit(path string, x, y []float64, res *curve.Result, opts Options) error {
	p := newPlot(opts)

	xs, ys := res.Curve(opts.Ext, opts.Points)
	if !degenerate(ys) {
		band, err := plotter.NewPolygon(bandXYs(xs, ys))
		if err != nil {
			return fmt.Errorf("figure: band: %w", err)
		}
		band.Color = camBlue
		band.LineStyle.Width = 0
		p.Add(band)
	}

	line, err := plotter.NewLine(nominalXYs(xs, ys))
	if err != nil {
		return fmt.Errorf("figure: fit line: %w", err)
	}
	line.Color = brickRed
	line.Width = vg.Points(1.5)

	sc, err := plotter.NewScatter(toXYs(x, y))
	if err != nil {
		return fmt.Errorf("figure: samples: %w", err)
	}
	sc.GlyphStyle.Color = oxBlue
	sc.GlyphStyle.Radius = vg.Points(2.5)

	p.Add(line, sc)
	p.Legend.Add(res.Label(opts.Label), line)
	p.Legend.Top = true
	return save(p, path, opts)
}

// Named pairs a fit with the legend entry it is drawn under.
type Named struct {
	Name   string
	Result *curve.Result
}

// Compare draws several fits of the same samples in one figure.
func Compare(path string, x, y []float64, fits []Named, opts Options) error {
	p := newPlot(opts)
	if err := plotutil.AddScatters(p, "samples", toXYs(x, y)); err != nil {
		return fmt.Errorf("figure: samples: %w", err)
	}
	lines := make([]any, 0, 2*len(fits))
	for _, f := range fits {
		xs, ys := f.Result.Curve(opts.Ext, opts.Points)
		lines = append(lines, f.Name, nominalXYs(xs, ys))
	}
	if err := plotutil.AddLines(p, lines...); err != nil {
		return fmt.Errorf("figure: fits: %w", err)
	}
	p.Legend.Top = true
	return save(p, path, opts)
}

func newPlot(opts Options) *plot.Plot {
	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	return p
}

func save(p *plot.Plot, path string, opts Options) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	w, h := opts.Width, opts.Height
	if w <= 0 {
		w = 6 * vg.Inch
	}
	if h <= 0 {
		h = 4 * vg.Inch
	}
	return p.Save(w, h, path)
}

func toXYs(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}

func nominalXYs(xs []float64, ys []unc.Measurement) plotter.XYs {
	return toXYs(xs, unc.Nominals(ys))
}

// bandXYs walks the upper edge left to right and the lower edge back.
func bandXYs(xs []float64, ys []unc.Measurement) plotter.XYs {
	n := len(xs)
	pts := make(plotter.XYs, 2*n)
	for i := 0; i < n; i++ {
		pts[i].X = xs[i]
		pts[i].Y = ys[i].Value + ys[i].Err
		pts[2*n-1-i].X = xs[i]
		pts[2*n-1-i].Y = ys[i].Value - ys[i].Err
	}
	return pts
}

func degenerate(ys []unc.Measurement) bool {
	for _, y := range ys {
		if y.Degenerate() {
			return true
		}
	}
	return false
}
