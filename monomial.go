package carl

import (
	"fmt"
	"strconv"
	"strings"
)

// ============================================================
// Monomial — product of variable powers
// ============================================================

// VarExp is one variable raised to a positive exponent.
type VarExp struct {
	Var Variable
	Exp uint
}

// Monomial keeps its factors sorted by variable ordinal with exponents >= 1.
// The empty monomial is the multiplicative identity.
type Monomial struct {
	exps []VarExp
	tdeg uint
}

// NewMonomial returns v^exp. The exponent defaults to 1; exponent 0 yields
// the identity monomial.
func NewMonomial(v Variable, exp ...uint) Monomial {
	e := uint(1)
	if len(exp) > 0 {
		e = exp[0]
	}
	if e == 0 {
		return Monomial{}
	}
	return Monomial{exps: []VarExp{{Var: v, Exp: e}}, tdeg: e}
}

// MonomialOf builds a monomial from arbitrary (variable, exponent) pairs.
// Repeated variables are merged and zero exponents dropped.
func MonomialOf(pairs ...VarExp) Monomial {
	m := Monomial{}
	for _, p := range pairs {
		m = m.Mul(NewMonomial(p.Var, p.Exp))
	}
	return m
}

func newMonomial(exps []VarExp) Monomial {
	var d uint
	for _, ve := range exps {
		d += ve.Exp
	}
	return Monomial{exps: exps, tdeg: d}
}

func (m Monomial) NumVariables() int   { return len(m.exps) }
func (m Monomial) TotalDegree() uint   { return m.tdeg }
func (m Monomial) IsConstant() bool    { return len(m.exps) == 0 }
func (m Monomial) At(i int) VarExp     { return m.exps[i] }
func (m Monomial) Has(v Variable) bool { return m.Degree(v) > 0 }
func (m Monomial) Kind() Kind          { return KindMonomial }

func (m Monomial) Exponents() []VarExp {
	out := make([]VarExp, len(m.exps))
	copy(out, m.exps)
	return out
}

func (m Monomial) Variables() []Variable {
	out := make([]Variable, len(m.exps))
	for i, ve := range m.exps {
		out[i] = ve.Var
	}
	return out
}

func (m Monomial) GatherVariables() []Variable { return m.Variables() }

func (m Monomial) Degree(v Variable) uint {
	for _, ve := range m.exps {
		if ve.Var.id == v.id {
			return ve.Exp
		}
	}
	return 0
}

func (m Monomial) Mul(o Monomial) Monomial {
	if m.IsConstant() {
		return o
	}
	if o.IsConstant() {
		return m
	}
	out := make([]VarExp, 0, len(m.exps)+len(o.exps))
	i, j := 0, 0
	for i < len(m.exps) && j < len(o.exps) {
		a, b := m.exps[i], o.exps[j]
		switch {
		case a.Var.id < b.Var.id:
			out = append(out, a)
			i++
		case a.Var.id > b.Var.id:
			out = append(out, b)
			j++
		default:
			out = append(out, VarExp{Var: a.Var, Exp: a.Exp + b.Exp})
			i++
			j++
		}
	}
	out = append(out, m.exps[i:]...)
	out = append(out, o.exps[j:]...)
	return Monomial{exps: out, tdeg: m.tdeg + o.tdeg}
}

// Divides reports whether m divides o.
func (m Monomial) Divides(o Monomial) bool {
	if m.tdeg > o.tdeg {
		return false
	}
	for _, ve := range m.exps {
		if o.Degree(ve.Var) < ve.Exp {
			return false
		}
	}
	return true
}

// Div returns m / o, failing when some exponent of o exceeds the one in m.
func (m Monomial) Div(o Monomial) (Monomial, error) {
	if !o.Divides(m) {
		return Monomial{}, fmt.Errorf("%w: %s / %s", ErrIncompatibleExponents, m, o)
	}
	out := make([]VarExp, 0, len(m.exps))
	for _, ve := range m.exps {
		if e := ve.Exp - o.Degree(ve.Var); e > 0 {
			out = append(out, VarExp{Var: ve.Var, Exp: e})
		}
	}
	return newMonomial(out), nil
}

func (m Monomial) Pow(n uint) Monomial {
	if n == 0 {
		return Monomial{}
	}
	out := make([]VarExp, len(m.exps))
	for i, ve := range m.exps {
		out[i] = VarExp{Var: ve.Var, Exp: ve.Exp * n}
	}
	return Monomial{exps: out, tdeg: m.tdeg * n}
}

func (m Monomial) GCD(o Monomial) Monomial {
	var out []VarExp
	for _, ve := range m.exps {
		if e := min(ve.Exp, o.Degree(ve.Var)); e > 0 {
			out = append(out, VarExp{Var: ve.Var, Exp: e})
		}
	}
	return newMonomial(out)
}

func (m Monomial) LCM(o Monomial) Monomial {
	g := m.GCD(o)
	prod := m.Mul(o)
	l, _ := prod.Div(g)
	return l
}

func (m Monomial) Equal(o Monomial) bool {
	if m.tdeg != o.tdeg || len(m.exps) != len(o.exps) {
		return false
	}
	for i := range m.exps {
		if m.exps[i].Var.id != o.exps[i].Var.id || m.exps[i].Exp != o.exps[i].Exp {
			return false
		}
	}
	return true
}

// Cmp is the graded lexicographic order: higher total degree first, then the
// first differing position decides in favour of the lower variable ordinal or
// the higher exponent.
func (m Monomial) Cmp(o Monomial) int {
	if m.tdeg != o.tdeg {
		if m.tdeg > o.tdeg {
			return 1
		}
		return -1
	}
	for i := 0; i < len(m.exps) && i < len(o.exps); i++ {
		a, b := m.exps[i], o.exps[i]
		if a.Var.id != b.Var.id {
			if a.Var.id < b.Var.id {
				return 1
			}
			return -1
		}
		if a.Exp != b.Exp {
			if a.Exp > b.Exp {
				return 1
			}
			return -1
		}
	}
	switch {
	case len(m.exps) > len(o.exps):
		return 1
	case len(m.exps) < len(o.exps):
		return -1
	}
	return 0
}

func (m Monomial) Evaluate(a Assignment) (Rational, error) {
	return m.Term().Evaluate(a)
}

func (m Monomial) String() string {
	if m.IsConstant() {
		return "1"
	}
	parts := make([]string, len(m.exps))
	for i, ve := range m.exps {
		parts[i] = ve.Var.name
		if ve.Exp > 1 {
			parts[i] += "^" + strconv.FormatUint(uint64(ve.Exp), 10)
		}
	}
	return strings.Join(parts, "*")
}

// identityKey is like String but uses ordinals, so distinct variables that
// share a name never collide.
func (m Monomial) identityKey(sb *strings.Builder) {
	for i, ve := range m.exps {
		if i > 0 {
			sb.WriteByte('*')
		}
		sb.WriteByte('#')
		sb.WriteString(strconv.FormatUint(ve.Var.id, 10))
		sb.WriteByte('^')
		sb.WriteString(strconv.FormatUint(uint64(ve.Exp), 10))
	}
}
