// Package config loads the YAML settings shared by the polyfit tools.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-yaml"

	"polyfit/internal/curve"
)

type Config struct {
	Model  string       `yaml:"model"`
	Solver SolverConfig `yaml:"solver"`
	Plot   PlotConfig   `yaml:"plot"`
	Server ServerConfig `yaml:"server"`
}

type SolverConfig struct {
	MaxIter int     `yaml:"max_iter"`
	Tau     float64 `yaml:"tau"`
	Tol     float64 `yaml:"tol"`
	Ftol    float64 `yaml:"ftol"`
	Gtol    float64 `yaml:"gtol"`
}

type PlotConfig struct {
	// Ext widens the prediction range by this fraction of the data range.
	Ext    float64 `yaml:"ext"`
	Points int     `yaml:"points"`
	// Width and Height are in inches.
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	LaTeX  bool    `yaml:"latex"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	// MaxSamples bounds the request size accepted by POST /fit.
	MaxSamples int `yaml:"max_samples"`
}

func Default() Config {
	return Config{
		Model:  string(curve.Lin),
		Solver: SolverConfig{MaxIter: 200, Tau: 1e-3, Tol: 1e-12, Ftol: 1e-12, Gtol: 1e-12},
		Plot:   PlotConfig{Ext: 0.05, Points: 50, Width: 6, Height: 4},
		Server: ServerConfig{Port: "8080", MaxSamples: 100000},
	}
}

// Load reads path over the defaults and then applies PORT and FIT_MODEL from
// the environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("FIT_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("FIT_MAX_ITER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: FIT_MAX_ITER: %w", err)
		}
		cfg.Solver.MaxIter = n
	}
	return cfg, cfg.Validate()
}

// Validate checks the model selector and the numeric ranges.
func (c Config) Validate() error {
	if _, err := curve.ParseSelector(c.Model); err != nil {
		return fmt.Errorf("config: model: %w", err)
	}
	if c.Plot.Points < 2 {
		return fmt.Errorf("config: plot.points must be at least 2, got %d", c.Plot.Points)
	}
	if c.Plot.Ext < 0 {
		return fmt.Errorf("config: plot.ext must not be negative, got %g", c.Plot.Ext)
	}
	if c.Server.MaxSamples <= 0 {
		return fmt.Errorf("config: server.max_samples must be positive, got %d", c.Server.MaxSamples)
	}
	return nil
}

// Selector parses the configured model name or mask.
func (c Config) Selector() (curve.Selector, error) { return curve.ParseSelector(c.Model) }

func (c Config) SolverOptions() curve.LevenbergMarquardt {
	return curve.LevenbergMarquardt{
		MaxIter: c.Solver.MaxIter,
		Tau:     c.Solver.Tau,
		Tol:     c.Solver.Tol,
		Ftol:    c.Solver.Ftol,
		Gtol:    c.Solver.Gtol,
	}
}
