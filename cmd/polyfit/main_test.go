package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "FIT_MODEL", "FIT_MAX_ITER"} {
		t.Setenv(k, "")
	}
}

func TestRun_SyntheticLineJSON(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	var out bytes.Buffer
	err := run([]string{
		"-regen", "-coeffs", "2,1", "-n", "20", "-noise", "0",
		"-data", filepath.Join(dir, "samples.csv"),
		"-model", "lin", "-json",
	}, &out, zap.NewNop())
	require.NoError(t, err)

	var got struct {
		Mask   string `json:"mask"`
		Params []struct {
			Value float64 `json:"value"`
			Err   float64 `json:"err"`
		} `json:"params"`
		Powers []int `json:"powers"`
		DOF    int   `json:"dof"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "11", got.Mask)
	assert.Equal(t, []int{1, 0}, got.Powers)
	assert.Equal(t, 18, got.DOF)
	require.Len(t, got.Params, 2)
	assert.InDelta(t, 2, got.Params[0].Value, 1e-9)
	assert.InDelta(t, 1, got.Params[1].Value, 1e-9)
}

func TestRun_WritesOutputs(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "pred", "curve.csv")
	imgPath := filepath.Join(dir, "img", "fit.png")
	var out bytes.Buffer
	err := run([]string{
		"-regen", "-seed", "7",
		"-data", filepath.Join(dir, "samples.csv"),
		"-model", "parab",
		"-out_csv", csvPath, "-out_img", imgPath,
	}, &out, zap.NewNop())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "y = ")

	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, 51, bytes.Count(b, []byte("\n")))
	_, err = os.Stat(imgPath)
	assert.NoError(t, err)
}

func TestRun_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	err := run([]string{"-data", filepath.Join(dir, "missing.csv")}, &bytes.Buffer{}, zap.NewNop())
	assert.Error(t, err)

	err = run([]string{"-regen", "-coeffs", "1,x", "-data", filepath.Join(dir, "s.csv")}, &bytes.Buffer{}, zap.NewNop())
	assert.ErrorContains(t, err, "coeffs")

	err = run([]string{"-model", "quartic"}, &bytes.Buffer{}, zap.NewNop())
	assert.Error(t, err)
}

func TestParseCoeffs(t *testing.T) {
	got, err := parseCoeffs(" 1, -2.5 ,3")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2.5, 3}, got)
}
