package carl

import (
	"fmt"
	"strconv"
	"strings"
)

// ============================================================
// FactorizedPolynomial — constant times a product of factor powers
// ============================================================

type FactorPower struct {
	Factor *Factor
	Exp    uint
}

// FactorizedPolynomial is coeff * f1^e1 * ... * fn^en over handles of one
// FactorizationCache. Constants carry no cache. The zero value is 0.
type FactorizedPolynomial struct {
	coeff   Rational
	factors []FactorPower
	cache   *FactorizationCache
}

func NewFactorizedConstant(r Rational) FactorizedPolynomial {
	return FactorizedPolynomial{coeff: r}
}

// NewFactorizedPolynomial factorizes p through c. A nil cache is only
// accepted for constants.
func NewFactorizedPolynomial(p Polynomial, c *FactorizationCache) (FactorizedPolynomial, error) {
	if p.IsConstant() {
		return NewFactorizedConstant(p.ConstantPart()), nil
	}
	if c == nil {
		return FactorizedPolynomial{}, fmt.Errorf("%w: %s needs a factorization cache", ErrCacheMismatch, p)
	}
	return c.Factorize(p), nil
}

func (a FactorizedPolynomial) Coefficient() Rational      { return a.coeff }
func (a FactorizedPolynomial) Cache() *FactorizationCache { return a.cache }
func (a FactorizedPolynomial) IsZero() bool               { return a.coeff.IsZero() }
func (a FactorizedPolynomial) IsConstant() bool           { return len(a.factors) == 0 }
func (a FactorizedPolynomial) IsOne() bool                { return a.IsConstant() && a.coeff.IsOne() }

func (a FactorizedPolynomial) Scale(r Rational) FactorizedPolynomial {
	a = a.current()
	return makeFactorized(a.coeff.Mul(r), exponents(a.factors), a.cache)
}

// Factors lists the factor powers in canonical order. Handles refined since
// a was built are listed as their parts.
func (a FactorizedPolynomial) Factors() []FactorPower {
	a = a.current()
	out := make([]FactorPower, len(a.factors))
	copy(out, a.factors)
	return out
}

// current brings a up to date with the refinements of its cache.
func (a FactorizedPolynomial) current() FactorizedPolynomial {
	if a.cache != nil {
		a.factors = a.cache.resolve(a.factors)
	}
	return a
}

func exponents(fs []FactorPower) map[*Factor]uint {
	m := make(map[*Factor]uint, len(fs))
	for _, fp := range fs {
		m[fp.Factor] += fp.Exp
	}
	return m
}

func makeFactorized(coeff Rational, exps map[*Factor]uint, c *FactorizationCache) FactorizedPolynomial {
	if coeff.IsZero() {
		return FactorizedPolynomial{}
	}
	fs := sortFactors(exps)
	if len(fs) == 0 {
		return NewFactorizedConstant(coeff)
	}
	return FactorizedPolynomial{coeff: coeff, factors: fs, cache: c}
}

func commonCache(a, b FactorizedPolynomial) (*FactorizationCache, error) {
	switch {
	case a.cache == nil:
		return b.cache, nil
	case b.cache == nil || a.cache == b.cache:
		return a.cache, nil
	}
	return nil, fmt.Errorf("%w: %s and %s", ErrCacheMismatch, a.cache.id, b.cache.id)
}

// Expand multiplies the factorization out.
func (a FactorizedPolynomial) Expand() Polynomial {
	p := a.coeff.Polynomial()
	for _, fp := range a.factors {
		p = p.Mul(fp.Factor.poly.Pow(fp.Exp))
	}
	return p
}

func (a FactorizedPolynomial) Evaluate(asg Assignment) (Rational, error) {
	val := a.coeff
	if val.IsZero() {
		return val, nil
	}
	for _, fp := range a.factors {
		x, err := fp.Factor.poly.Evaluate(asg)
		if err != nil {
			return Rational{}, err
		}
		val = val.Mul(x.powUint(fp.Exp))
	}
	return val, nil
}

func (a FactorizedPolynomial) GatherVariables() []Variable {
	lists := make([][]Variable, len(a.factors))
	for i, fp := range a.factors {
		lists[i] = fp.Factor.poly.GatherVariables()
	}
	return unionVariables(lists...)
}

func (a FactorizedPolynomial) ConstantPart() Rational {
	c := a.coeff
	for _, fp := range a.factors {
		c = c.Mul(fp.Factor.poly.ConstantPart().powUint(fp.Exp))
	}
	return c
}

func (a FactorizedPolynomial) TotalDegree() uint {
	if a.IsZero() {
		return 0
	}
	var d uint
	for _, fp := range a.factors {
		d += fp.Exp * fp.Factor.poly.TotalDegree()
	}
	return d
}

// Equal requires equal constants and the same handles with the same
// exponents, after refinement.
func (a FactorizedPolynomial) Equal(b FactorizedPolynomial) bool {
	a, b = a.current(), b.current()
	if !a.coeff.Equal(b.coeff) || len(a.factors) != len(b.factors) {
		return false
	}
	for i := range a.factors {
		if a.factors[i] != b.factors[i] {
			return false
		}
	}
	return true
}

func (a FactorizedPolynomial) Neg() FactorizedPolynomial {
	return FactorizedPolynomial{coeff: a.coeff.Neg(), factors: a.factors, cache: a.cache}
}

func (a FactorizedPolynomial) Pow(n uint) FactorizedPolynomial {
	if n == 0 {
		return NewFactorizedConstant(NewRational(1))
	}
	exps := exponents(a.current().factors)
	for f := range exps {
		exps[f] *= n
	}
	return makeFactorized(a.coeff.powUint(n), exps, a.cache)
}

func (a FactorizedPolynomial) Mul(b FactorizedPolynomial) (FactorizedPolynomial, error) {
	a, b = a.current(), b.current()
	c, err := commonCache(a, b)
	if err != nil {
		return FactorizedPolynomial{}, err
	}
	exps := exponents(a.factors)
	for _, fp := range b.factors {
		exps[fp.Factor] += fp.Exp
	}
	return makeFactorized(a.coeff.Mul(b.coeff), exps, c), nil
}

// Add pulls out the factors both operands share. When the cofactors have the
// same factors only the constants are added; otherwise the cofactors are
// expanded, summed and factorized again.
func (a FactorizedPolynomial) Add(b FactorizedPolynomial) (FactorizedPolynomial, error) {
	a, b = a.current(), b.current()
	c, err := commonCache(a, b)
	if err != nil {
		return FactorizedPolynomial{}, err
	}
	switch {
	case a.IsZero():
		return b, nil
	case b.IsZero():
		return a, nil
	}
	ea, eb := exponents(a.factors), exponents(b.factors)
	common := minExponents(ea, eb)
	ra, rb := withoutExponents(ea, common), withoutExponents(eb, common)

	if sameExponents(ra, rb) {
		for f, e := range ra {
			common[f] += e
		}
		return makeFactorized(a.coeff.Add(b.coeff), common, c), nil
	}

	sum := makeFactorized(a.coeff, ra, c).Expand().Add(makeFactorized(b.coeff, rb, c).Expand())
	if sum.IsZero() {
		return FactorizedPolynomial{}, nil
	}
	rest := c.Factorize(sum)
	for _, fp := range rest.factors {
		common[fp.Factor] += fp.Exp
	}
	return makeFactorized(rest.coeff, common, c), nil
}

func (a FactorizedPolynomial) Sub(b FactorizedPolynomial) (FactorizedPolynomial, error) {
	return a.Add(b.Neg())
}

// CommonDivisor keeps the factors both operands share with the smaller
// exponent; its constant is the rational gcd of the two constants.
func (a FactorizedPolynomial) CommonDivisor(b FactorizedPolynomial) (FactorizedPolynomial, error) {
	a, b = a.current(), b.current()
	c, err := commonCache(a, b)
	if err != nil {
		return FactorizedPolynomial{}, err
	}
	switch {
	case a.IsZero():
		return makeFactorized(b.coeff.Abs(), exponents(b.factors), c), nil
	case b.IsZero():
		return makeFactorized(a.coeff.Abs(), exponents(a.factors), c), nil
	}
	common := minExponents(exponents(a.factors), exponents(b.factors))
	return makeFactorized(RationalGCD(a.coeff, b.coeff), common, c), nil
}

// CommonMultiple takes every factor with the larger exponent; its constant
// is the rational lcm of the two constants.
func (a FactorizedPolynomial) CommonMultiple(b FactorizedPolynomial) (FactorizedPolynomial, error) {
	a, b = a.current(), b.current()
	c, err := commonCache(a, b)
	if err != nil {
		return FactorizedPolynomial{}, err
	}
	if a.IsZero() || b.IsZero() {
		return FactorizedPolynomial{}, nil
	}
	exps := exponents(a.factors)
	for _, fp := range b.factors {
		exps[fp.Factor] = max(exps[fp.Factor], fp.Exp)
	}
	return makeFactorized(RationalLCM(a.coeff, b.coeff), exps, c), nil
}

// LazyDiv removes the factors shared by a and b from both, keeping the
// constants.
func (a FactorizedPolynomial) LazyDiv(b FactorizedPolynomial) (FactorizedPolynomial, FactorizedPolynomial, error) {
	a, b = a.current(), b.current()
	c, err := commonCache(a, b)
	if err != nil {
		return FactorizedPolynomial{}, FactorizedPolynomial{}, err
	}
	ea, eb := exponents(a.factors), exponents(b.factors)
	common := minExponents(ea, eb)
	return makeFactorized(a.coeff, withoutExponents(ea, common), c),
		makeFactorized(b.coeff, withoutExponents(eb, common), c), nil
}

// Quotient returns a / b when b divides a exactly.
func (a FactorizedPolynomial) Quotient(b FactorizedPolynomial) (FactorizedPolynomial, error) {
	a, b = a.current(), b.current()
	c, err := commonCache(a, b)
	if err != nil {
		return FactorizedPolynomial{}, err
	}
	if b.IsZero() {
		return FactorizedPolynomial{}, fmt.Errorf("%w: (%s) / 0", ErrDivisionByZero, a)
	}
	k, _ := a.coeff.Div(b.coeff)
	ea := exponents(a.factors)
	contained := true
	for _, fp := range b.factors {
		if ea[fp.Factor] < fp.Exp {
			contained = false
			break
		}
	}
	if contained {
		for _, fp := range b.factors {
			ea[fp.Factor] -= fp.Exp
		}
		return makeFactorized(k, ea, c), nil
	}
	q, ok := a.Expand().DivideExact(b.Expand())
	if !ok {
		return FactorizedPolynomial{}, fmt.Errorf("%w: (%s) / (%s)", ErrInexactDivision, a, b)
	}
	return NewFactorizedPolynomial(q, c)
}

func minExponents(a, b map[*Factor]uint) map[*Factor]uint {
	out := map[*Factor]uint{}
	for f, e := range a {
		if e2, ok := b[f]; ok {
			out[f] = min(e, e2)
		}
	}
	return out
}

func withoutExponents(a, sub map[*Factor]uint) map[*Factor]uint {
	out := make(map[*Factor]uint, len(a))
	for f, e := range a {
		if r := e - sub[f]; r > 0 {
			out[f] = r
		}
	}
	return out
}

func sameExponents(a, b map[*Factor]uint) bool {
	if len(a) != len(b) {
		return false
	}
	for f, e := range a {
		if b[f] != e {
			return false
		}
	}
	return true
}

// String renders the constant alone when there are no factors. Otherwise a
// constant other than 1 comes first, then the factors joined by " * ".
// Bare variables print without parentheses.
func (a FactorizedPolynomial) String() string {
	a = a.current()
	if len(a.factors) == 0 {
		return a.coeff.plain()
	}
	parts := make([]string, 0, len(a.factors)+1)
	if !a.coeff.IsOne() {
		parts = append(parts, a.coeff.plain())
	}
	for _, fp := range a.factors {
		s := fp.Factor.poly.String()
		if !fp.Factor.isVariable() {
			s = "(" + s + ")"
		}
		if fp.Exp > 1 {
			s += "^" + strconv.FormatUint(uint64(fp.Exp), 10)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " * ")
}
