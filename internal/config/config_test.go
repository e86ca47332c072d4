package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyfit/internal/curve"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "polyfit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "FIT_MODEL", "FIT_MAX_ITER"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	sel, err := cfg.Selector()
	require.NoError(t, err)
	assert.Equal(t, curve.Lin, sel)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
model: "101"
solver:
  max_iter: 50
  gtol: 0.0000000001
plot:
  points: 100
  latex: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "101", cfg.Model)
	assert.Equal(t, 50, cfg.Solver.MaxIter)
	assert.Equal(t, 1e-3, cfg.Solver.Tau)
	assert.Equal(t, 100, cfg.Plot.Points)
	assert.True(t, cfg.Plot.LaTeX)
	assert.Equal(t, 0.05, cfg.Plot.Ext)

	sel, err := cfg.Selector()
	require.NoError(t, err)
	assert.Equal(t, curve.Mask{true, false, true}, sel)
	assert.Equal(t, 50, cfg.SolverOptions().MaxIter)
	assert.Equal(t, 1e-10, cfg.SolverOptions().Gtol)
	assert.Equal(t, 1e-12, cfg.SolverOptions().Ftol)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FIT_MODEL", "cubic")
	t.Setenv("FIT_MAX_ITER", "10")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "cubic", cfg.Model)
	assert.Equal(t, 10, cfg.Solver.MaxIter)

	t.Setenv("FIT_MAX_ITER", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "model: quartic\n"))
	assert.ErrorIs(t, err, curve.ErrUnknownModel)

	_, err = Load(writeFile(t, "plot:\n  points: 1\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "model: [unclosed\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
