// Package carl provides an exact arithmetic kernel for multivariate
// polynomials over the rationals.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat), never floating point
//   - Canonical, deterministic output for every value
//   - Value types that are immutable after construction
//   - A factorization cache shared by factorized polynomials, passed explicitly
//
// The six algebraic kinds form a promotion lattice
//
//	Rational < Variable < Monomial < Term < Polynomial < RationalFunction
//
// and the package-level Add, Sub, Mul, Div, Neg and Pow combine any two of
// them in the smallest kind that can hold the result.
package carl

import "fmt"

// ============================================================
// Core Interface
// ============================================================

type Kind uint8

const (
	KindRational Kind = iota
	KindVariable
	KindMonomial
	KindTerm
	KindPolynomial
	KindRationalFunction
)

func (k Kind) String() string {
	switch k {
	case KindRational:
		return "rational"
	case KindVariable:
		return "variable"
	case KindMonomial:
		return "monomial"
	case KindTerm:
		return "term"
	case KindPolynomial:
		return "polynomial"
	case KindRationalFunction:
		return "rational_function"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Evaluable is anything that can be evaluated under an assignment and
// reports the variables it mentions.
type Evaluable interface {
	Evaluate(Assignment) (Rational, error)
	GatherVariables() []Variable
}

// Expr is implemented by the six lattice kinds.
type Expr interface {
	Evaluable
	Kind() Kind
	String() string
}

func Evaluate(e Evaluable, a Assignment) (Rational, error) { return e.Evaluate(a) }
func GatherVariables(e Evaluable) []Variable              { return e.GatherVariables() }

// ============================================================
// Promotion
// ============================================================

func kindOf(a, b Expr) Kind { return max(a.Kind(), b.Kind()) }

func asRational(e Expr) Rational {
	switch v := e.(type) {
	case Rational:
		return v
	case *Rational:
		return *v
	}
	panic(fmt.Sprintf("carl: %s is not a rational", e.Kind()))
}

func asMonomial(e Expr) Monomial {
	switch v := e.(type) {
	case Variable:
		return NewMonomial(v)
	case *Variable:
		return NewMonomial(*v)
	case Monomial:
		return v
	case *Monomial:
		return *v
	}
	panic(fmt.Sprintf("carl: %s is not a monomial", e.Kind()))
}

func asTerm(e Expr) Term {
	switch e.Kind() {
	case KindRational:
		return asRational(e).Term()
	case KindVariable, KindMonomial:
		return asMonomial(e).Term()
	}
	switch v := e.(type) {
	case Term:
		return v
	case *Term:
		return *v
	}
	panic(fmt.Sprintf("carl: %s is not a term", e.Kind()))
}

func asPolynomial(e Expr) Polynomial {
	if e.Kind() <= KindTerm {
		return asTerm(e).Polynomial()
	}
	switch v := e.(type) {
	case Polynomial:
		return v
	case *Polynomial:
		return *v
	}
	panic(fmt.Sprintf("carl: %s is not a polynomial", e.Kind()))
}

func asRationalFunction(e Expr) RationalFunction {
	if e.Kind() <= KindPolynomial {
		return asPolynomial(e).RationalFunction()
	}
	switch v := e.(type) {
	case RationalFunction:
		return v
	case *RationalFunction:
		return *v
	}
	panic(fmt.Sprintf("carl: %s is not a rational function", e.Kind()))
}

func isZero(e Expr) bool {
	if e.Kind() == KindRationalFunction {
		return asRationalFunction(e).IsZero()
	}
	return asPolynomial(e).IsZero()
}

// ============================================================
// Lattice arithmetic
// ============================================================

func Add(a, b Expr) Expr {
	switch k := kindOf(a, b); {
	case k == KindRational:
		return asRational(a).Add(asRational(b))
	case k <= KindPolynomial:
		return asPolynomial(a).Add(asPolynomial(b))
	}
	return asRationalFunction(a).Add(asRationalFunction(b))
}

func Sub(a, b Expr) Expr {
	switch k := kindOf(a, b); {
	case k == KindRational:
		return asRational(a).Sub(asRational(b))
	case k <= KindPolynomial:
		return asPolynomial(a).Sub(asPolynomial(b))
	}
	return asRationalFunction(a).Sub(asRationalFunction(b))
}

// Mul keeps products of variables and monomials as monomials and products
// with a constant or term as terms. A zero term collapses to Rational 0.
func Mul(a, b Expr) Expr {
	k := kindOf(a, b)
	switch {
	case k == KindRational:
		return asRational(a).Mul(asRational(b))
	case k <= KindMonomial && a.Kind() != KindRational && b.Kind() != KindRational:
		return asMonomial(a).Mul(asMonomial(b))
	case k <= KindTerm:
		t := asTerm(a).Mul(asTerm(b))
		if t.IsZero() {
			return Rational{}
		}
		return t
	case k == KindPolynomial:
		return asPolynomial(a).Mul(asPolynomial(b))
	}
	return asRationalFunction(a).Mul(asRationalFunction(b))
}

func Neg(a Expr) Expr {
	switch k := a.Kind(); {
	case k == KindRational:
		return asRational(a).Neg()
	case k <= KindTerm:
		return asTerm(a).Neg()
	case k == KindPolynomial:
		return asPolynomial(a).Neg()
	}
	return asRationalFunction(a).Neg()
}

// Pow raises a to a non-negative integer power.
func Pow(a Expr, n int) (Expr, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: (%s)^%d", ErrInvalidExponent, a, n)
	}
	switch a.Kind() {
	case KindRational:
		return asRational(a).Pow(n)
	case KindVariable, KindMonomial:
		return asMonomial(a).Pow(uint(n)), nil
	case KindTerm:
		return asTerm(a).Pow(uint(n)), nil
	case KindPolynomial:
		return asPolynomial(a).Pow(uint(n)), nil
	}
	return asRationalFunction(a).Pow(uint(n)), nil
}

// Div divides a by b. Constant divisors scale the dividend and a divisor
// equal to the dividend yields 1. A single-term divisor that divides every
// term of a polynomial yields a polynomial. Everything else becomes a
// RationalFunction without cancellation.
func Div(a, b Expr) (Expr, error) {
	if isZero(b) {
		return nil, fmt.Errorf("%w: (%s) / 0", ErrDivisionByZero, a)
	}
	ka, kb := a.Kind(), b.Kind()
	switch {
	case ka == KindRational && kb == KindRational:
		return asRational(a).Div(asRational(b))
	case kb == KindRational:
		inv, _ := asRational(b).Inv()
		return Mul(a, inv), nil
	case ka == KindRationalFunction || kb == KindRationalFunction:
		return asRationalFunction(a).Div(asRationalFunction(b))
	}
	pa, pb := asPolynomial(a), asPolynomial(b)
	if pa.Equal(pb) {
		return NewRational(1).Polynomial(), nil
	}
	if kindOf(a, b) == KindPolynomial && pb.NumTerms() == 1 {
		if q, ok := pa.divideByTerm(pb.terms[0]); ok {
			return q, nil
		}
	}
	return NewRationalFunction(pa, pb)
}

// Equal compares a and b structurally after promotion to their common kind.
func Equal(a, b Expr) bool {
	switch k := kindOf(a, b); {
	case k == KindRational:
		return asRational(a).Equal(asRational(b))
	case k <= KindPolynomial:
		return asPolynomial(a).Equal(asPolynomial(b))
	}
	return asRationalFunction(a).Equal(asRationalFunction(b))
}
