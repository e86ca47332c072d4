package curve

import (
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LevenbergMarquardt minimises Σ (f(x_i; p) - y_i)^2.
//
// Each step solves the damped system [J·S; √μ·I] z = [-r; 0] by QR, with S
// scaling the Jacobian columns to unit norm, and moves p by S·z. The
// damping follows Nielsen's update. The solve stops when the step, the
// gradient or the change in cost becomes negligible, then takes one
// undamped Gauss-Newton step if J·S is well conditioned.
type LevenbergMarquardt struct {
	MaxIter int
	// Tau is the initial damping, relative to the unit-scaled Jacobian.
	Tau float64
	// Tol stops the iteration once |z| <= Tol·(|p/S| + Tol).
	Tol float64
	// Ftol stops the iteration once both the predicted and the actual
	// change in cost are within Ftol·cost, or within the rounding error of
	// evaluating the cost when that is larger.
	Ftol float64
	// Gtol stops the iteration once every scaled Jacobian column is within
	// Gtol of orthogonal to the residual.
	Gtol float64
}

const (
	defaultMaxIter = 200
	defaultTau     = 1e-3
	defaultTol     = 1e-12
	defaultFtol    = 1e-12
	defaultGtol    = 1e-12
	minDamping     = 1e-20
	maxDamping     = 1e20
	// roundoffSafety widens the estimated rounding error of the cost.
	roundoffSafety = 16
)

func (lm LevenbergMarquardt) withDefaults() LevenbergMarquardt {
	if lm.MaxIter <= 0 {
		lm.MaxIter = defaultMaxIter
	}
	if lm.Tau <= 0 {
		lm.Tau = defaultTau
	}
	if lm.Tol <= 0 {
		lm.Tol = defaultTol
	}
	if lm.Ftol <= 0 {
		lm.Ftol = defaultFtol
	}
	if lm.Gtol <= 0 {
		lm.Gtol = defaultGtol
	}
	return lm
}

type solution struct {
	params []float64
	ssr    float64
	// scaled is J·S, with scale holding the diagonal of S.
	scaled     *mat.Dense
	scale      []float64
	iterations int
}

func (lm LevenbergMarquardt) solve(obj Objective, x, y []float64, log *zap.Logger) (*solution, error) {
	lm = lm.withDefaults()
	n, k := len(x), obj.Arity()

	// The model is linear in p, so J is fixed for the whole solve.
	jac := mat.NewDense(n, k, nil)
	row := make([]float64, k)
	for i, xi := range x {
		obj.Partials(row, xi)
		jac.SetRow(i, row)
	}

	scale := make([]float64, k)
	for j := 0; j < k; j++ {
		norm := mat.Norm(jac.ColView(j), 2)
		if norm == 0 || math.IsInf(norm, 0) {
			norm = 1
		}
		scale[j] = 1 / norm
	}
	scaled := mat.NewDense(n, k, nil)
	scaled.Apply(func(_, j int, v float64) float64 { return v * scale[j] }, jac)

	p := make([]float64, k)
	r := residuals(obj, x, y, p, nil)
	cost := floats.Dot(r, r)
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return nil, fitErrorf("residual is not finite at the starting point")
	}

	done := func(it int, reason string) (*solution, error) {
		params, ssr := refine(obj, x, y, scaled, scale, p, r, cost)
		log.Debug("solver converged",
			zap.String("reason", reason),
			zap.Int("iterations", it),
			zap.Float64("ssr", ssr),
		)
		return &solution{params: params, ssr: ssr, scaled: scaled, scale: scale, iterations: it}, nil
	}

	aug := mat.NewDense(n+k, k, nil)
	aug.Slice(0, n, 0, k).(*mat.Dense).Copy(scaled)
	rhs := mat.NewVecDense(n+k, nil)
	z := mat.NewVecDense(k, nil)
	pz := make([]float64, k)
	trial := make([]float64, k)
	rTrial := make([]float64, n)
	lin := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(k, nil)

	mu, nu := lm.Tau, 2.0
	for it := 1; it <= lm.MaxIter; it++ {
		if cost == 0 {
			return done(it, "zero residual")
		}
		grad.MulVec(scaled.T(), mat.NewVecDense(n, r))
		if mat.Norm(grad, math.Inf(1)) <= lm.Gtol*math.Sqrt(cost) {
			return done(it, "gradient")
		}

		sq := math.Sqrt(mu)
		for j := 0; j < k; j++ {
			aug.Set(n+j, j, sq)
		}
		for i := 0; i < n; i++ {
			rhs.SetVec(i, -r[i])
		}
		for j := 0; j < k; j++ {
			rhs.SetVec(n+j, 0)
		}

		var qr mat.QR
		qr.Factorize(aug)
		if err := qr.SolveVecTo(z, false, rhs); err != nil {
			return nil, &FitError{Msg: "damped step could not be solved", Err: err}
		}

		for j := 0; j < k; j++ {
			pz[j] = p[j] / scale[j]
		}
		step := mat.Norm(z, 2)
		if step <= lm.Tol*(floats.Norm(pz, 2)+lm.Tol) {
			return done(it, "step")
		}

		for j := 0; j < k; j++ {
			trial[j] = p[j] + z.AtVec(j)*scale[j]
		}
		residuals(obj, x, y, trial, rTrial)
		trialCost := floats.Dot(rTrial, rTrial)
		if math.IsNaN(trialCost) {
			return nil, fitErrorf("residual became NaN at iteration %d", it)
		}

		// predicted = |r|^2 - |r + J·S·z|^2
		lin.MulVec(scaled, z)
		for i := 0; i < n; i++ {
			lin.SetVec(i, lin.AtVec(i)+r[i])
		}
		predicted := cost - mat.Dot(lin, lin)

		limit := math.Max(lm.Ftol*cost, roundoff(obj, x, y, p, r, row))
		stalled := predicted <= limit && math.Abs(cost-trialCost) <= limit

		// Near the minimum the cost is flat to rounding; once the predicted
		// gain drops below that, the linearised step is taken as is.
		negligible := predicted <= 4*epsilon*cost
		if (trialCost < cost && predicted > 0) || negligible {
			rho := 1.0
			if !negligible {
				rho = (cost - trialCost) / predicted
			}
			mu *= math.Max(1.0/3, 1-math.Pow(2*rho-1, 3))
			mu = math.Max(mu, minDamping)
			nu = 2
			copy(p, trial)
			copy(r, rTrial)
			cost = trialCost
			if stalled {
				return done(it, "cost")
			}
		} else {
			if stalled {
				return done(it, "cost")
			}
			mu *= nu
			nu *= 2
			if mu > maxDamping {
				return nil, fitErrorf("damping exceeded %g at iteration %d without reducing the residual", maxDamping, it)
			}
		}
		log.Debug("solver step",
			zap.Int("iteration", it),
			zap.Float64("ssr", cost),
			zap.Float64("damping", mu),
		)
	}
	return nil, fitErrorf("no convergence after %d iterations (ssr %g)", lm.MaxIter, cost)
}

// roundoff estimates how far rounding can move the cost at p: each residual
// sums k+1 terms, and the cost moves by about 2·|r_i| times their error.
func roundoff(obj Objective, x, y, p, r, terms []float64) float64 {
	var sum float64
	for i, xi := range x {
		obj.Partials(terms, xi)
		mag := math.Abs(y[i])
		for j, pj := range p {
			mag += math.Abs(pj * terms[j])
		}
		sum += math.Abs(r[i]) * mag
	}
	return roundoffSafety * 2 * float64(len(p)+1) * epsilon * sum
}

// refine takes one undamped Gauss-Newton step from p and keeps it unless
// the cost grows. A rank-deficient J·S is left alone: its least-squares
// solution is not unique and the damped iterate is returned as is.
func refine(obj Objective, x, y []float64, scaled *mat.Dense, scale, p, r []float64, cost float64) ([]float64, float64) {
	n, k := scaled.Dims()
	if cost == 0 {
		return p, cost
	}
	var qr mat.QR
	qr.Factorize(scaled)
	if qr.Cond()*float64(max(n, k))*epsilon > 1 {
		return p, cost
	}
	rhs := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		rhs.SetVec(i, -r[i])
	}
	z := mat.NewVecDense(k, nil)
	if err := qr.SolveVecTo(z, false, rhs); err != nil {
		return p, cost
	}
	trial := make([]float64, k)
	for j := range trial {
		trial[j] = p[j] + z.AtVec(j)*scale[j]
	}
	rt := residuals(obj, x, y, trial, nil)
	trialCost := floats.Dot(rt, rt)
	if trialCost <= cost {
		return trial, trialCost
	}
	return p, cost
}

// residuals writes f(x_i; p) - y_i into dst, allocating it when nil.
func residuals(obj Objective, x, y, p, dst []float64) []float64 {
	if dst == nil {
		dst = make([]float64, len(x))
	}
	for i := range x {
		dst[i] = obj.Eval(x[i], p) - y[i]
	}
	return dst
}

// covariance estimates the parameter covariance the way curve_fit does with
// relative weights: (JᵀJ)⁻¹ · ssr/(n-k), computed as S·((J·S)ᵀ(J·S))⁻¹·S
// from the column-scaled Jacobian. A rank-deficient Jacobian or zero
// degrees of freedom yields +Inf everywhere.
func covariance(scaled *mat.Dense, scale []float64, ssr float64) (*mat.SymDense, bool) {
	n, k := scaled.Dims()
	cov := mat.NewSymDense(k, nil)
	fillInf := func() (*mat.SymDense, bool) {
		for i := 0; i < k; i++ {
			for j := i; j < k; j++ {
				cov.SetSym(i, j, math.Inf(1))
			}
		}
		return cov, false
	}
	if n <= k {
		return fillInf()
	}

	var svd mat.SVD
	if !svd.Factorize(scaled, mat.SVDThin) {
		return fillInf()
	}
	sv := svd.Values(nil)
	if sv[0] == 0 || sv[k-1] <= sv[0]*float64(max(n, k))*epsilon {
		return fillInf()
	}
	var v mat.Dense
	svd.VTo(&v)

	s2 := ssr / float64(n-k)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			var c float64
			for l := 0; l < k; l++ {
				c += v.At(i, l) * v.At(j, l) / (sv[l] * sv[l])
			}
			cov.SetSym(i, j, c*scale[i]*scale[j]*s2)
		}
	}
	return cov, true
}

const epsilon = 2.220446049250313e-16
