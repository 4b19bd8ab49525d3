package carl

import (
	"fmt"
	"math/big"
)

// ============================================================
// Polynomial division, content, calculus
// ============================================================

// Divide performs multivariate division by leading terms and returns
// quotient and remainder with p = q*d + r, where no term of r is divisible
// by the leading term of d.
func (p Polynomial) Divide(d Polynomial) (q, r Polynomial, err error) {
	if d.IsZero() {
		return Polynomial{}, Polynomial{}, fmt.Errorf("%w: (%s) / 0", ErrDivisionByZero, p)
	}
	lt := d.terms[0]
	var quot, rem []Term
	rest := p
	for !rest.IsZero() {
		head := rest.terms[0]
		if f, ok := head.Divide(lt); ok {
			quot = append(quot, f)
			rest = rest.Sub(d.MulTerm(f))
			continue
		}
		rem = append(rem, head)
		rest = Polynomial{terms: rest.terms[1:]}
	}
	return canonical(quot), canonical(rem), nil
}

// DivideExact returns p / d if d divides p without remainder.
func (p Polynomial) DivideExact(d Polynomial) (Polynomial, bool) {
	if d.IsZero() {
		return Polynomial{}, false
	}
	if len(d.terms) == 1 {
		return p.divideByTerm(d.terms[0])
	}
	lt := d.terms[0]
	var quot []Term
	rest := p
	for !rest.IsZero() {
		f, ok := rest.terms[0].Divide(lt)
		if !ok {
			return Polynomial{}, false
		}
		quot = append(quot, f)
		rest = rest.Sub(d.MulTerm(f))
	}
	return canonical(quot), true
}

// divideByTerm divides every term of p by t, failing if any is not
// divisible.
func (p Polynomial) divideByTerm(t Term) (Polynomial, bool) {
	if t.IsZero() {
		return Polynomial{}, false
	}
	out := make([]Term, len(p.terms))
	for i, pt := range p.terms {
		q, ok := pt.Divide(t)
		if !ok {
			return Polynomial{}, false
		}
		out[i] = q
	}
	// Dividing by a monomial keeps the relative order of the terms.
	return Polynomial{terms: out}, true
}

// Content is the positive rational c such that p/c has coprime integer
// coefficients. The content of 0 is 0.
func (p Polynomial) Content() Rational {
	if p.IsZero() {
		return Rational{}
	}
	num := new(big.Int)
	den := big.NewInt(1)
	for _, t := range p.terms {
		r := t.coeff.rat()
		num.GCD(nil, nil, num, new(big.Int).Abs(r.Num()))
		den = lcmInt(den, r.Denom())
	}
	return ratOf(new(big.Rat).SetFrac(num, den))
}

// PrimitivePart splits p into c * q where q has coprime integer coefficients
// and a positive leading coefficient. For p = 0 it returns (0, 0).
func (p Polynomial) PrimitivePart() (Rational, Polynomial) {
	if p.IsZero() {
		return Rational{}, Polynomial{}
	}
	c := p.Content()
	if p.LeadingCoefficient().Sign() < 0 {
		c = c.Neg()
	}
	inv, _ := c.Inv()
	return c, p.Scale(inv)
}

// MonomialContent is the gcd of all monomials of p.
func (p Polynomial) MonomialContent() Monomial {
	if p.IsZero() {
		return Monomial{}
	}
	g := p.terms[0].mono
	for _, t := range p.terms[1:] {
		if g.IsConstant() {
			break
		}
		g = g.GCD(t.mono)
	}
	return g
}

// GCD returns the primitive greatest common divisor of two univariate
// polynomials in the same variable, computed by the Euclidean algorithm over
// Q. Constants have gcd 1 with everything; gcd(p, 0) is the primitive part of
// p. The bool is false for multivariate operands or operands in different
// variables.
func (p Polynomial) GCD(o Polynomial) (Polynomial, bool) {
	one := NewRational(1).Polynomial()
	switch {
	case p.IsZero() && o.IsZero():
		return Polynomial{}, true
	case p.IsZero():
		_, g := o.PrimitivePart()
		return g, true
	case o.IsZero():
		_, g := p.PrimitivePart()
		return g, true
	case p.IsConstant() || o.IsConstant():
		return one, true
	}
	vp, ok := p.IsUnivariate()
	if !ok {
		return Polynomial{}, false
	}
	vo, ok := o.IsUnivariate()
	if !ok || !vp.Equal(vo) {
		return Polynomial{}, false
	}
	_, a := p.PrimitivePart()
	_, b := o.PrimitivePart()
	if a.TotalDegree() < b.TotalDegree() {
		a, b = b, a
	}
	for !b.IsZero() {
		_, r, err := a.Divide(b)
		if err != nil {
			return Polynomial{}, false
		}
		if !r.IsZero() {
			_, r = r.PrimitivePart()
		}
		a, b = b, r
	}
	if a.IsConstant() {
		return one, true
	}
	return a, true
}

// Derivative returns the partial derivative of p with respect to v.
func (p Polynomial) Derivative(v Variable) Polynomial {
	out := make([]Term, 0, len(p.terms))
	for _, t := range p.terms {
		e := t.mono.Degree(v)
		if e == 0 {
			continue
		}
		m, _ := t.mono.Div(NewMonomial(v))
		out = append(out, Term{coeff: t.coeff.Mul(NewRational(int64(e))), mono: m})
	}
	return canonical(out)
}

// Substitute replaces every occurrence of v in p by q.
func (p Polynomial) Substitute(v Variable, q Polynomial) Polynomial {
	powers := map[uint]Polynomial{}
	result := Polynomial{}
	for _, t := range p.terms {
		e := t.mono.Degree(v)
		if e == 0 {
			result = result.Add(t.Polynomial())
			continue
		}
		qe, ok := powers[e]
		if !ok {
			qe = q.Pow(e)
			powers[e] = qe
		}
		rest, _ := t.mono.Div(NewMonomial(v, e))
		result = result.Add(qe.MulTerm(Term{coeff: t.coeff, mono: rest}))
	}
	return result
}
