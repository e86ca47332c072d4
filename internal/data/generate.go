package data

import (
	"encoding/csv"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

// Generate draws s.N samples with x evenly spaced over [XMin, XMax] and y the
// polynomial plus Gaussian noise. The same seed gives the same series.
func (s Synthetic) Generate() Series {
	rng := rand.New(rand.NewSource(s.Seed))
	out := Series{X: make([]float64, s.N), Y: make([]float64, s.N)}
	step := 0.0
	if s.N > 1 {
		step = (s.XMax - s.XMin) / float64(s.N-1)
	}
	for i := 0; i < s.N; i++ {
		x := s.XMin + float64(i)*step
		y := 0.0
		for _, c := range s.Coeffs {
			y = y*x + c
		}
		if s.Noise > 0 {
			y += rng.NormFloat64() * s.Noise
		}
		out.X[i] = x
		out.Y[i] = y
	}
	return out
}

// GenerateSynthetic writes s.Generate() to outPath as an x,y CSV.
func GenerateSynthetic(s Synthetic, outPath string) error {
	return WriteCSV(outPath, s.Generate(), "x", "y")
}

// WriteCSV writes the series with a header row, creating parent
// directories as needed.
func WriteCSV(path string, s Series, xcol, ycol string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{xcol, ycol}); err != nil {
		return err
	}
	for i := range s.X {
		rec := []string{
			strconv.FormatFloat(s.X[i], 'g', -1, 64),
			strconv.FormatFloat(s.Y[i], 'g', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
