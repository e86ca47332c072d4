package curve

import (
	"math"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"polyfit/internal/unc"
)

// PredictFunc maps x values to predicted y values with propagated
// uncertainty.
type PredictFunc func(xs []float64) []unc.Measurement

// Options tune FitWith. The zero value is ready to use.
type Options struct {
	Solver LevenbergMarquardt
	Logger *zap.Logger
}

// Result is a fitted polynomial. It is never modified after FitWith
// returns it.
type Result struct {
	Mask Mask
	// Params holds one coefficient per included power, highest first.
	Params     []unc.Measurement
	Covariance *mat.SymDense
	SSR        float64
	// DOF is the number of samples minus the number of parameters.
	DOF        int
	Iterations int

	obj  Objective
	xmin float64
	xmax float64
}

// Fit is FitWith with default options, returning the parameters and the
// prediction function.
//
//	params, f, err := curve.Fit([]float64{0, 1, 2}, []float64{1, 4, 7}, curve.Lin)
//	// params[0] ≈ 3 (slope), params[1] ≈ 1 (intercept)
func Fit(x, y []float64, sel Selector) ([]unc.Measurement, PredictFunc, error) {
	res, err := FitWith(x, y, sel, Options{})
	if err != nil {
		return nil, nil, err
	}
	return slices.Clone(res.Params), res.Func(), nil
}

// FitWith resolves sel, fits it to (x, y) by nonlinear least squares and
// derives standard errors from the covariance estimate.
//
// A degenerate fit (collinear design, or as many samples as parameters)
// succeeds with infinite standard errors.
func FitWith(x, y []float64, sel Selector, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	mask, err := Resolve(sel)
	if err != nil {
		return nil, err
	}
	obj := Build(mask)
	if obj.Arity() == 0 {
		return nil, &InvalidModelError{Msg: "mask " + mask.String() + " includes no terms"}
	}
	if err := validate(x, y, obj.Arity()); err != nil {
		return nil, err
	}

	sol, err := opts.Solver.solve(obj, x, y, log)
	if err != nil {
		log.Debug("fit failed", zap.Stringer("mask", mask), zap.Error(err))
		return nil, err
	}

	cov, ok := covariance(sol.scaled, sol.scale, sol.ssr)
	if !ok {
		log.Warn("degenerate fit, standard errors are infinite",
			zap.Stringer("mask", mask),
			zap.Int("samples", len(x)),
			zap.Int("params", obj.Arity()),
		)
	}
	params := make([]unc.Measurement, obj.Arity())
	for j := range params {
		params[j] = unc.Measurement{Value: sol.params[j], Err: math.Sqrt(cov.At(j, j))}
	}

	res := &Result{
		Mask:       mask,
		Params:     params,
		Covariance: cov,
		SSR:        sol.ssr,
		DOF:        len(x) - obj.Arity(),
		Iterations: sol.iterations,
		obj:        obj,
		xmin:       floats.Min(x),
		xmax:       floats.Max(x),
	}
	log.Debug("fit done",
		zap.Stringer("mask", mask),
		zap.Float64s("params", unc.Nominals(params)),
		zap.Float64("ssr", sol.ssr),
		zap.Int("iterations", sol.iterations),
	)
	return res, nil
}

func validate(x, y []float64, arity int) error {
	switch {
	case len(x) == 0:
		return fitErrorf("no samples")
	case len(x) != len(y):
		return fitErrorf("x has %d values, y has %d", len(x), len(y))
	case len(x) < arity:
		return fitErrorf("%d samples for %d parameters", len(x), arity)
	}
	for i := range x {
		if !finite(x[i]) || !finite(y[i]) {
			return fitErrorf("sample %d (%g, %g) is not finite", i, x[i], y[i])
		}
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Predict evaluates the fitted polynomial at xs, propagating each
// coefficient's standard error independently.
func (r *Result) Predict(xs []float64) []unc.Measurement {
	powers := r.obj.Powers()
	out := make([]unc.Measurement, len(xs))
	for i, x := range xs {
		var y unc.Measurement
		for j, p := range r.Params {
			y = y.Add(p.Scale(pow(x, powers[j])))
		}
		out[i] = y
	}
	return out
}

// Eval returns the nominal prediction at a single x.
func (r *Result) Eval(x float64) float64 {
	return r.obj.Eval(x, unc.Nominals(r.Params))
}

// Powers lists the power of each entry of Params.
func (r *Result) Powers() []int { return r.obj.Powers() }

// Curve samples the fit on n evenly spaced points spanning the data range
// widened by ext times that range on each side.
func (r *Result) Curve(ext float64, n int) (xs []float64, ys []unc.Measurement) {
	span := r.xmax - r.xmin
	xs = Linspace(r.xmin-span*ext, r.xmax+span*ext, n)
	return xs, r.Predict(xs)
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Func returns a PredictFunc over a private copy of the parameters.
func (r *Result) Func() PredictFunc {
	frozen := &Result{Params: slices.Clone(r.Params), obj: r.obj}
	return frozen.Predict
}
