package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot/vg"

	"polyfit/internal/config"
	"polyfit/internal/curve"
	"polyfit/internal/data"
	"polyfit/internal/figure"
	"polyfit/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	if err := run(context.Background(), os.Args[1:], os.Stdout, logger); err != nil {
		logger.Fatal("compare failed", zap.Error(err))
	}
}

// candidate is one model fitted to the shared samples.
type candidate struct {
	Model  curve.Model
	Result *curve.Result
}

// ReducedChiSq is SSR per degree of freedom, +Inf when there are none.
func (c candidate) ReducedChiSq() float64 {
	if c.Result.DOF <= 0 {
		return math.Inf(1)
	}
	return c.Result.SSR / float64(c.Result.DOF)
}

func run(ctx context.Context, args []string, stdout io.Writer, logger *zap.Logger) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	dataPath := fs.String("data", "data/samples.csv", "Input CSV")
	xcol := fs.String("x", "x", "x column name")
	ycol := fs.String("y", "y", "y column name")
	outImg := fs.String("out_img", "", "Figure with every fit")
	outCsv := fs.String("out_csv", "", "CSV summary of every fit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	raw, err := data.LoadCSV(*dataPath, *xcol, *ycol)
	if err != nil {
		return err
	}
	series, _ := raw.Finite()

	fits, err := fitAll(ctx, series, curve.Models(), curve.Options{Solver: cfg.SolverOptions(), Logger: logger})
	if err != nil {
		logger.Warn("some models could not be fitted", zap.Error(err))
	}
	if len(fits) == 0 {
		return fmt.Errorf("no model could be fitted: %w", err)
	}
	rank(fits)

	lopts := curve.LabelOptions{LaTeX: cfg.Plot.LaTeX}
	for _, c := range fits {
		fmt.Fprintf(stdout, "%-6s | ssr=%.6g | dof=%d | chi2/dof=%.6g | %s\n",
			c.Model, c.Result.SSR, c.Result.DOF, c.ReducedChiSq(), c.Result.Label(lopts))
	}
	logger.Info("best model", zap.String("model", string(fits[0].Model)), zap.Float64("chi2_dof", fits[0].ReducedChiSq()))

	if *outCsv != "" {
		if err := writeSummaryCSV(*outCsv, fits); err != nil {
			logger.Warn("failed to write summary", zap.Error(err))
		} else {
			logger.Info("summary written", zap.String("csv", *outCsv))
		}
	}
	if *outImg != "" {
		named := make([]figure.Named, len(fits))
		for i, c := range fits {
			named[i] = figure.Named{Name: string(c.Model), Result: c.Result}
		}
		fopts := figure.Options{
			Title:  "model comparison",
			XLabel: *xcol,
			YLabel: *ycol,
			Ext:    cfg.Plot.Ext,
			Points: cfg.Plot.Points,
			Width:  vg.Length(cfg.Plot.Width) * vg.Inch,
			Height: vg.Length(cfg.Plot.Height) * vg.Inch,
		}
		if err := figure.Compare(*outImg, series.X, series.Y, named, fopts); err != nil {
			logger.Warn("failed to draw comparison", zap.Error(err))
		} else {
			logger.Info("figure written", zap.String("img", *outImg))
		}
	}
	return nil
}

// fitAll fits every model concurrently. Failed fits are left out of the
// result and their errors combined.
func fitAll(ctx context.Context, s data.Series, models []curve.Model, opts curve.Options) ([]candidate, error) {
	results := make([]*curve.Result, len(models))
	errs := make([]error, len(models))
	g, ctx := errgroup.WithContext(ctx)
	for i, m := range models {
		i, m := i, m
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := curve.FitWith(s.X, s.Y, m, opts)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", m, err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]candidate, 0, len(models))
	for i, res := range results {
		if res != nil {
			out = append(out, candidate{Model: models[i], Result: res})
		}
	}
	return out, multierr.Combine(errs...)
}

// rank orders candidates by reduced chi-square, then by fewer parameters.
func rank(cs []candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		ri, rj := cs[i].ReducedChiSq(), cs[j].ReducedChiSq()
		if ri != rj {
			return ri < rj
		}
		return len(cs[i].Result.Params) < len(cs[j].Result.Params)
	})
}

func writeSummaryCSV(path string, cs []candidate) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"model", "mask", "params", "ssr", "dof", "chi2_dof", "iterations"}); err != nil {
		return err
	}
	for _, c := range cs {
		rec := []string{
			string(c.Model),
			c.Result.Mask.String(),
			strconv.Itoa(len(c.Result.Params)),
			fmt.Sprintf("%.6g", c.Result.SSR),
			strconv.Itoa(c.Result.DOF),
			fmt.Sprintf("%.6g", c.ReducedChiSq()),
			strconv.Itoa(c.Result.Iterations),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
