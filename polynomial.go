package carl

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================
// Polynomial — canonical sum of terms
// ============================================================

// Polynomial is a sum of terms in canonical form: sorted descending by the
// monomial order, no two terms with equal monomials, no zero coefficients.
// The empty polynomial is zero.
type Polynomial struct{ terms []Term }

// NewPolynomial canonicalises the given terms.
func NewPolynomial(terms ...Term) Polynomial {
	owned := make([]Term, len(terms))
	copy(owned, terms)
	return canonical(owned)
}

func (r Rational) Polynomial() Polynomial {
	if r.IsZero() {
		return Polynomial{}
	}
	return Polynomial{terms: []Term{r.Term()}}
}

func (v Variable) Polynomial() Polynomial { return Polynomial{terms: []Term{v.Term()}} }
func (m Monomial) Polynomial() Polynomial { return Polynomial{terms: []Term{m.Term()}} }

func (t Term) Polynomial() Polynomial {
	if t.IsZero() {
		return Polynomial{}
	}
	return Polynomial{terms: []Term{t}}
}

// canonical sorts, merges and filters terms in place. The caller must own the
// slice.
func canonical(terms []Term) Polynomial {
	sort.SliceStable(terms, func(i, j int) bool { return terms[i].mono.Cmp(terms[j].mono) > 0 })
	out := terms[:0]
	for _, t := range terms {
		if n := len(out); n > 0 && out[n-1].mono.Equal(t.mono) {
			out[n-1] = Term{coeff: out[n-1].coeff.Add(t.coeff), mono: t.mono}
			continue
		}
		out = append(out, t)
	}
	res := make([]Term, 0, len(out))
	for _, t := range out {
		if !t.coeff.IsZero() {
			res = append(res, t)
		}
	}
	return Polynomial{terms: res}
}

// mergeTerms adds two canonical term lists, negating b when sub is set.
func mergeTerms(a, b []Term, sub bool) Polynomial {
	out := make([]Term, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		var c int
		switch {
		case i == len(a):
			c = -1
		case j == len(b):
			c = 1
		default:
			c = a[i].mono.Cmp(b[j].mono)
		}
		switch {
		case c > 0:
			out = append(out, a[i])
			i++
		case c < 0:
			t := b[j]
			if sub {
				t = t.Neg()
			}
			out = append(out, t)
			j++
		default:
			var coeff Rational
			if sub {
				coeff = a[i].coeff.Sub(b[j].coeff)
			} else {
				coeff = a[i].coeff.Add(b[j].coeff)
			}
			if !coeff.IsZero() {
				out = append(out, Term{coeff: coeff, mono: a[i].mono})
			}
			i++
			j++
		}
	}
	return Polynomial{terms: out}
}

func (p Polynomial) Add(o Polynomial) Polynomial { return mergeTerms(p.terms, o.terms, false) }
func (p Polynomial) Sub(o Polynomial) Polynomial { return mergeTerms(p.terms, o.terms, true) }

func (p Polynomial) Neg() Polynomial {
	out := make([]Term, len(p.terms))
	for i, t := range p.terms {
		out[i] = t.Neg()
	}
	return Polynomial{terms: out}
}

func (p Polynomial) Scale(r Rational) Polynomial {
	if r.IsZero() {
		return Polynomial{}
	}
	out := make([]Term, len(p.terms))
	for i, t := range p.terms {
		out[i] = t.Scale(r)
	}
	return Polynomial{terms: out}
}

func (p Polynomial) MulTerm(t Term) Polynomial {
	if t.IsZero() {
		return Polynomial{}
	}
	out := make([]Term, len(p.terms))
	for i, pt := range p.terms {
		out[i] = pt.Mul(t)
	}
	return Polynomial{terms: out}
}

func (p Polynomial) Mul(o Polynomial) Polynomial {
	if p.IsZero() || o.IsZero() {
		return Polynomial{}
	}
	out := make([]Term, 0, len(p.terms)*len(o.terms))
	for _, a := range p.terms {
		for _, b := range o.terms {
			out = append(out, a.Mul(b))
		}
	}
	return canonical(out)
}

// Pow raises p to n by repeated squaring. p^0 is 1, including for p = 0.
func (p Polynomial) Pow(n uint) Polynomial {
	result := NewRational(1).Polynomial()
	base := p
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base)
		}
	}
	return result
}

func (p Polynomial) Evaluate(a Assignment) (Rational, error) {
	idx := a.index()
	sum := Rational{}
	for _, t := range p.terms {
		val := t.coeff
		for _, ve := range t.mono.exps {
			x, ok := idx[ve.Var.id]
			if !ok {
				return Rational{}, fmt.Errorf("%w: %s in %s", ErrUnboundVariable, ve.Var.name, p)
			}
			val = val.Mul(x.powUint(ve.Exp))
		}
		sum = sum.Add(val)
	}
	return sum, nil
}

func (p Polynomial) IsZero() bool     { return len(p.terms) == 0 }
func (p Polynomial) NumTerms() int    { return len(p.terms) }
func (p Polynomial) Term(i int) Term  { return p.terms[i] }
func (p Polynomial) Kind() Kind       { return KindPolynomial }
func (p Polynomial) IsOne() bool      { return p.IsConstant() && p.ConstantPart().IsOne() }
func (p Polynomial) IsConstant() bool { return len(p.terms) == 0 || (len(p.terms) == 1 && p.terms[0].IsConstant()) }

func (p Polynomial) Terms() []Term {
	out := make([]Term, len(p.terms))
	copy(out, p.terms)
	return out
}

// LeadingTerm returns the largest term, or the zero term for 0.
func (p Polynomial) LeadingTerm() Term {
	if p.IsZero() {
		return Term{}
	}
	return p.terms[0]
}

func (p Polynomial) LeadingCoefficient() Rational { return p.LeadingTerm().coeff }

// TotalDegree is the degree of the leading term, since the order is graded.
func (p Polynomial) TotalDegree() uint { return p.LeadingTerm().mono.tdeg }

func (p Polynomial) Degree(v Variable) uint {
	var d uint
	for _, t := range p.terms {
		d = max(d, t.mono.Degree(v))
	}
	return d
}

// ConstantPart returns the coefficient of the constant monomial, which is
// always the last term when present.
func (p Polynomial) ConstantPart() Rational {
	if p.IsZero() {
		return Rational{}
	}
	if last := p.terms[len(p.terms)-1]; last.IsConstant() {
		return last.coeff
	}
	return Rational{}
}

// GatherVariables returns the distinct variables of p by ascending ordinal.
func (p Polynomial) GatherVariables() []Variable {
	seen := map[uint64]Variable{}
	for _, t := range p.terms {
		for _, ve := range t.mono.exps {
			seen[ve.Var.id] = ve.Var
		}
	}
	out := make([]Variable, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sortVariables(out)
	return out
}

// IsUnivariate reports the single variable of p, if it has exactly one.
func (p Polynomial) IsUnivariate() (Variable, bool) {
	vars := p.GatherVariables()
	if len(vars) != 1 {
		return Variable{}, false
	}
	return vars[0], true
}

// Equal compares canonical forms term by term.
func (p Polynomial) Equal(o Polynomial) bool {
	if len(p.terms) != len(o.terms) {
		return false
	}
	for i := range p.terms {
		if !p.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

// Cmp is a total order over canonical forms: terms are compared pairwise by
// monomial then coefficient, and a proper prefix sorts first.
func (p Polynomial) Cmp(o Polynomial) int {
	for i := 0; i < len(p.terms) && i < len(o.terms); i++ {
		if c := p.terms[i].mono.Cmp(o.terms[i].mono); c != 0 {
			return c
		}
		if c := p.terms[i].coeff.Cmp(o.terms[i].coeff); c != 0 {
			return c
		}
	}
	switch {
	case len(p.terms) < len(o.terms):
		return -1
	case len(p.terms) > len(o.terms):
		return 1
	}
	return 0
}

func (p Polynomial) String() string {
	if p.IsZero() {
		return "0"
	}
	parts := make([]string, len(p.terms))
	for i, t := range p.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, "+")
}

func (p Polynomial) identityKey() string {
	var sb strings.Builder
	for i, t := range p.terms {
		if i > 0 {
			sb.WriteByte('+')
		}
		sb.WriteString(t.coeff.plain())
		sb.WriteByte(':')
		t.mono.identityKey(&sb)
	}
	return sb.String()
}
