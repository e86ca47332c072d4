// Package curve fits polynomial models with nonlinear least squares and
// reports every coefficient with its standard error.
//
// A model is a Mask: one flag per power, highest first. The named models
// lin_0, lin, parab and cubic are fixed masks; any other shape can be passed
// as an explicit Mask.
package curve

import (
	"slices"
	"strings"
)

// Mask selects which powers a polynomial includes, from order-1 down to 0.
type Mask []bool

// Order is the number of powers the mask spans.
func (m Mask) Order() int { return len(m) }

// Arity is the number of free parameters, one per included power.
func (m Mask) Arity() int {
	n := 0
	for _, in := range m {
		if in {
			n++
		}
	}
	return n
}

func (m Mask) String() string {
	var b strings.Builder
	for _, in := range m {
		if in {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// ParseMask reads a mask written as a string of 0s and 1s, highest power
// first: "101" is a*x^2 + c.
func ParseMask(s string) (Mask, error) {
	if s == "" {
		return nil, &InvalidModelError{Msg: "empty mask"}
	}
	m := make(Mask, 0, len(s))
	for _, r := range s {
		switch r {
		case '1':
			m = append(m, true)
		case '0':
			m = append(m, false)
		default:
			return nil, &InvalidModelError{Msg: "mask " + s + " must contain only 0 and 1"}
		}
	}
	return m, nil
}

// Model names a registered mask.
type Model string

const (
	Lin0  Model = "lin_0"
	Lin   Model = "lin"
	Parab Model = "parab"
	Cubic Model = "cubic"
)

var registry = map[Model]Mask{
	Lin0:  {true, false},
	Lin:   {true, true},
	Parab: {true, true, true},
	Cubic: {true, true, true, true},
}

// Models lists the registered names in ascending order.
func Models() []Model {
	out := make([]Model, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// Selector is either a Model or an explicit Mask.
type Selector interface {
	mask() (Mask, error)
}

func (m Model) mask() (Mask, error) {
	mk, ok := registry[m]
	if !ok {
		return nil, &UnknownModelError{Name: string(m)}
	}
	return slices.Clone(mk), nil
}

func (m Mask) mask() (Mask, error) {
	if len(m) == 0 {
		return nil, &InvalidModelError{Msg: "empty mask"}
	}
	return slices.Clone(m), nil
}

// Resolve returns the mask a selector stands for. The result is a copy.
func Resolve(sel Selector) (Mask, error) {
	if sel == nil {
		return nil, &InvalidModelError{Msg: "nil selector"}
	}
	return sel.mask()
}

// ParseSelector accepts a registered model name or a 0/1 mask string.
func ParseSelector(s string) (Selector, error) {
	if _, ok := registry[Model(s)]; ok {
		return Model(s), nil
	}
	if s != "" && strings.Trim(s, "01") == "" {
		m, err := ParseMask(s)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, &UnknownModelError{Name: s}
}
