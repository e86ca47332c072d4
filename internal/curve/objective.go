package curve

import (
	"fmt"
	"math"
)

// Term is one power of the polynomial and whether it has a coefficient.
type Term struct {
	Power    int
	Included bool
}

// Objective evaluates f(x; p) = Σ p_j x^power_j over the included terms,
// consuming parameters positionally, highest power first.
type Objective struct {
	terms []Term
	arity int
}

// Build expands a mask into its objective. Positions where the mask is false
// contribute no term and take no parameter.
func Build(mask Mask) Objective {
	o := Objective{terms: make([]Term, len(mask))}
	for i, in := range mask {
		o.terms[i] = Term{Power: len(mask) - 1 - i, Included: in}
		if in {
			o.arity++
		}
	}
	return o
}

func (o Objective) Terms() []Term { return append([]Term(nil), o.terms...) }

func (o Objective) Arity() int { return o.arity }

// Powers lists the powers that carry a parameter, in parameter order.
func (o Objective) Powers() []int {
	out := make([]int, 0, o.arity)
	for _, t := range o.terms {
		if t.Included {
			out = append(out, t.Power)
		}
	}
	return out
}

// Eval panics if len(params) != o.Arity().
func (o Objective) Eval(x float64, params []float64) float64 {
	o.checkArity(len(params))
	var y float64
	cur := 0
	for _, t := range o.terms {
		if !t.Included {
			continue
		}
		y += params[cur] * pow(x, t.Power)
		cur++
	}
	return y
}

// Partials writes ∂f/∂p_j at x into dst, which is the Jacobian row of the
// residual for that sample. The model is linear in its parameters so the row
// does not depend on them.
func (o Objective) Partials(dst []float64, x float64) {
	o.checkArity(len(dst))
	cur := 0
	for _, t := range o.terms {
		if !t.Included {
			continue
		}
		dst[cur] = pow(x, t.Power)
		cur++
	}
}

func (o Objective) checkArity(n int) {
	if n != o.arity {
		panic(fmt.Sprintf("curve: objective takes %d parameters, got %d", o.arity, n))
	}
}

// pow keeps 0^0 == 1 and stays exact for small integer powers.
func pow(x float64, p int) float64 {
	switch p {
	case 0:
		return 1
	case 1:
		return x
	case 2:
		return x * x
	}
	return math.Pow(x, float64(p))
}
