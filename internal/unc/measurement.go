// Package unc carries values with a one-sigma uncertainty and renders them
// for figure labels.
package unc

import (
	"math"

	"github.com/goccy/go-json"
)

// Measurement is a nominal value with its standard error.
//
// Arithmetic assumes the operands are independent: errors add in quadrature
// and scaling multiplies the error by the absolute factor.
type Measurement struct {
	Value float64
	Err   float64
}

func New(value, err float64) Measurement {
	return Measurement{Value: value, Err: math.Abs(err)}
}

// Exact returns a measurement with zero uncertainty.
func Exact(value float64) Measurement { return Measurement{Value: value} }

func (m Measurement) Add(o Measurement) Measurement {
	return Measurement{Value: m.Value + o.Value, Err: math.Hypot(m.Err, o.Err)}
}

func (m Measurement) Sub(o Measurement) Measurement {
	return Measurement{Value: m.Value - o.Value, Err: math.Hypot(m.Err, o.Err)}
}

func (m Measurement) Scale(k float64) Measurement {
	return Measurement{Value: m.Value * k, Err: m.Err * math.Abs(k)}
}

func (m Measurement) AddConst(c float64) Measurement {
	return Measurement{Value: m.Value + c, Err: m.Err}
}

// Degenerate reports whether the uncertainty is NaN or infinite, which is
// what a rank-deficient fit produces.
func (m Measurement) Degenerate() bool {
	return math.IsNaN(m.Err) || math.IsInf(m.Err, 0)
}

func Nominals(ms []Measurement) []float64 {
	out := make([]float64, len(ms))
	for i, m := range ms {
		out[i] = m.Value
	}
	return out
}

func Errors(ms []Measurement) []float64 {
	out := make([]float64, len(ms))
	for i, m := range ms {
		out[i] = m.Err
	}
	return out
}

// MarshalJSON writes non-finite numbers as strings so degenerate fits survive
// encoding.
func (m Measurement) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value any `json:"value"`
		Err   any `json:"err"`
	}{jsonFloat(m.Value), jsonFloat(m.Err)})
}

func jsonFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	return f
}
