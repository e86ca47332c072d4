package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"polyfit/internal/config"
	"polyfit/internal/curve"
	"polyfit/internal/data"
	"polyfit/internal/figure"
	"polyfit/internal/unc"
	"polyfit/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	if err := run(os.Args[1:], os.Stdout, logger); err != nil {
		logger.Fatal("polyfit failed", zap.Error(err))
	}
}

type report struct {
	Model      string            `json:"model"`
	Mask       string            `json:"mask"`
	Params     []unc.Measurement `json:"params"`
	Powers     []int             `json:"powers"`
	SSR        float64           `json:"ssr"`
	DOF        int               `json:"dof"`
	Iterations int               `json:"iterations"`
	Label      string            `json:"label"`
	Dropped    int               `json:"dropped"`
}

func run(args []string, stdout io.Writer, logger *zap.Logger) error {
	fs := flag.NewFlagSet("polyfit", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	regen := fs.Bool("regen", false, "Generate a synthetic dataset before fitting")
	coeffs := fs.String("coeffs", "0.5,-1,2", "Synthetic polynomial coefficients, highest power first")
	n := fs.Int("n", 50, "Number of synthetic samples")
	xmin := fs.Float64("xmin", -5, "Synthetic x lower bound")
	xmax := fs.Float64("xmax", 5, "Synthetic x upper bound")
	noise := fs.Float64("noise", 0.5, "Synthetic noise standard deviation")
	seed := fs.Int64("seed", 1, "Synthetic noise seed")
	dataPath := fs.String("data", "data/samples.csv", "Input CSV")
	xcol := fs.String("x", "x", "x column name")
	ycol := fs.String("y", "y", "y column name")
	model := fs.String("model", "", "Model name or 0/1 mask, overrides the config")
	latex := fs.Bool("latex", false, "Format the equation for LaTeX")
	outImg := fs.String("out_img", "", "Figure of the fit (png, svg or pdf)")
	outCsv := fs.String("out_csv", "", "CSV of predictions over the extended range")
	asJSON := fs.Bool("json", false, "Print a JSON report instead of the equation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *latex {
		cfg.Plot.LaTeX = true
	}
	sel, err := cfg.Selector()
	if err != nil {
		return err
	}

	if *regen {
		cs, err := parseCoeffs(*coeffs)
		if err != nil {
			return err
		}
		syn := data.Synthetic{Coeffs: cs, N: *n, XMin: *xmin, XMax: *xmax, Noise: *noise, Seed: *seed}
		logger.Info("generating synthetic samples", zap.Int("n", *n), zap.String("out", *dataPath))
		if err := data.GenerateSynthetic(syn, *dataPath); err != nil {
			return fmt.Errorf("generate %s: %w", *dataPath, err)
		}
	}

	raw, err := data.LoadCSV(*dataPath, *xcol, *ycol)
	if err != nil {
		return err
	}
	series, dropped := raw.Finite()
	if dropped > 0 {
		logger.Warn("dropped non-finite samples", zap.Int("dropped", dropped))
	}

	res, err := curve.FitWith(series.X, series.Y, sel, curve.Options{Solver: cfg.SolverOptions(), Logger: logger})
	if err != nil {
		return err
	}
	lopts := curve.LabelOptions{LaTeX: cfg.Plot.LaTeX}
	label := res.Label(lopts)
	logger.Info("fit done",
		zap.String("model", cfg.Model),
		zap.Stringer("mask", res.Mask),
		zap.Int("samples", series.Len()),
		zap.Float64("ssr", res.SSR),
		zap.Int("dof", res.DOF),
		zap.Int("iterations", res.Iterations),
	)

	if *outCsv != "" {
		xs, ys := res.Curve(cfg.Plot.Ext, cfg.Plot.Points)
		if err := writePredictionsCSV(*outCsv, xs, ys); err != nil {
			logger.Warn("failed to write predictions", zap.Error(err))
		} else {
			logger.Info("predictions written", zap.String("csv", *outCsv))
		}
	}
	if *outImg != "" {
		fopts := figure.Options{
			Title:  cfg.Model,
			XLabel: *xcol,
			YLabel: *ycol,
			Ext:    cfg.Plot.Ext,
			Points: cfg.Plot.Points,
			Width:  vg.Length(cfg.Plot.Width) * vg.Inch,
			Height: vg.Length(cfg.Plot.Height) * vg.Inch,
			Label:  lopts,
		}
		if err := figure.PolyFit(*outImg, series.X, series.Y, res, fopts); err != nil {
			logger.Warn("failed to draw fit", zap.Error(err))
		} else {
			logger.Info("figure written", zap.String("img", *outImg))
		}
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report{
			Model:      cfg.Model,
			Mask:       res.Mask.String(),
			Params:     res.Params,
			Powers:     res.Powers(),
			SSR:        res.SSR,
			DOF:        res.DOF,
			Iterations: res.Iterations,
			Label:      label,
			Dropped:    dropped,
		})
	}
	_, err = fmt.Fprintln(stdout, label)
	return err
}

func parseCoeffs(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("coeffs: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

func writePredictionsCSV(path string, xs []float64, ys []unc.Measurement) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"x", "y", "y_err"}); err != nil {
		return err
	}
	for i := range xs {
		rec := []string{
			strconv.FormatFloat(xs[i], 'g', -1, 64),
			strconv.FormatFloat(ys[i].Value, 'g', -1, 64),
			strconv.FormatFloat(ys[i].Err, 'g', -1, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
