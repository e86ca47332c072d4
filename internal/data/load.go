package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

var ErrColumn = errors.New("data: column not found")

// LoadCSV reads the named x and y columns of a CSV file with a header row.
func LoadCSV(path, xcol, ycol string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, err
	}
	defer f.Close()
	return ReadCSV(f, xcol, ycol)
}

// ReadCSV parses every row and reports all malformed cells at once. Empty
// cells and "nan" read as NaN. Nothing is returned if any row fails.
func ReadCSV(r io.Reader, xcol, ycol string) (Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return Series{}, err
	}
	if len(rows) < 2 {
		return Series{}, fmt.Errorf("data: need a header and at least one row, got %d lines", len(rows))
	}

	xi := slices.Index(rows[0], xcol)
	yi := slices.Index(rows[0], ycol)
	if xi < 0 || yi < 0 {
		return Series{}, fmt.Errorf("%w: want %q and %q in %v", ErrColumn, xcol, ycol, rows[0])
	}

	out := Series{X: make([]float64, 0, len(rows)-1), Y: make([]float64, 0, len(rows)-1)}
	var errs error
	for n, row := range rows[1:] {
		line := n + 2
		x, xerr := parseCell(row, xi)
		y, yerr := parseCell(row, yi)
		if xerr != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d, %s: %w", line, xcol, xerr))
		}
		if yerr != nil {
			errs = multierr.Append(errs, fmt.Errorf("line %d, %s: %w", line, ycol, yerr))
		}
		out.X = append(out.X, x)
		out.Y = append(out.Y, y)
	}
	if errs != nil {
		return Series{}, errs
	}
	return out, nil
}

func parseCell(row []string, i int) (float64, error) {
	if i >= len(row) {
		return 0, errors.New("missing cell")
	}
	s := strings.TrimSpace(row[i])
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
