package carl

import "fmt"

// ============================================================
// FactorizedRationalFunction
// ============================================================

// FactorizedRationalFunction is a quotient of factorized polynomials without
// common handles. The denominator's constant is always 1.
type FactorizedRationalFunction struct {
	num FactorizedPolynomial
	den FactorizedPolynomial
}

// NewFactorizedRationalFunction cancels the handles shared by num and den
// and moves the denominator's constant into the numerator.
func NewFactorizedRationalFunction(num, den FactorizedPolynomial) (FactorizedRationalFunction, error) {
	if den.IsZero() {
		return FactorizedRationalFunction{}, fmt.Errorf("%w: (%s)/(0)", ErrDivisionByZero, num)
	}
	n, d, err := num.LazyDiv(den)
	if err != nil {
		return FactorizedRationalFunction{}, err
	}
	if n.IsZero() {
		return FactorizedRationalFunction{num: n, den: NewFactorizedConstant(NewRational(1))}, nil
	}
	inv, _ := d.coeff.Inv()
	return FactorizedRationalFunction{num: n.Scale(inv), den: d.Scale(inv)}, nil
}

func (f FactorizedRationalFunction) Numerator() FactorizedPolynomial { return f.num }

func (f FactorizedRationalFunction) Denominator() FactorizedPolynomial {
	if f.den.IsZero() {
		return NewFactorizedConstant(NewRational(1))
	}
	return f.den
}

func (f FactorizedRationalFunction) IsZero() bool { return f.num.IsZero() }

func (f FactorizedRationalFunction) Add(g FactorizedRationalFunction) (FactorizedRationalFunction, error) {
	return f.combine(g, false)
}

func (f FactorizedRationalFunction) Sub(g FactorizedRationalFunction) (FactorizedRationalFunction, error) {
	return f.combine(g, true)
}

// combine brings both operands onto the common multiple of the
// denominators before adding the numerators.
func (f FactorizedRationalFunction) combine(g FactorizedRationalFunction, sub bool) (FactorizedRationalFunction, error) {
	b, d := f.Denominator(), g.Denominator()
	bRest, dRest, err := b.LazyDiv(d)
	if err != nil {
		return FactorizedRationalFunction{}, err
	}
	left, err := f.num.Mul(dRest)
	if err != nil {
		return FactorizedRationalFunction{}, err
	}
	right, err := g.num.Mul(bRest)
	if err != nil {
		return FactorizedRationalFunction{}, err
	}
	if sub {
		right = right.Neg()
	}
	num, err := left.Add(right)
	if err != nil {
		return FactorizedRationalFunction{}, err
	}
	den, err := b.Mul(dRest)
	if err != nil {
		return FactorizedRationalFunction{}, err
	}
	return NewFactorizedRationalFunction(num, den)
}

func (f FactorizedRationalFunction) Mul(g FactorizedRationalFunction) (FactorizedRationalFunction, error) {
	num, err := f.num.Mul(g.num)
	if err != nil {
		return FactorizedRationalFunction{}, err
	}
	den, err := f.Denominator().Mul(g.Denominator())
	if err != nil {
		return FactorizedRationalFunction{}, err
	}
	return NewFactorizedRationalFunction(num, den)
}

func (f FactorizedRationalFunction) Div(g FactorizedRationalFunction) (FactorizedRationalFunction, error) {
	if g.IsZero() {
		return FactorizedRationalFunction{}, fmt.Errorf("%w: (%s) / 0", ErrDivisionByZero, f)
	}
	num, err := f.num.Mul(g.Denominator())
	if err != nil {
		return FactorizedRationalFunction{}, err
	}
	den, err := f.Denominator().Mul(g.num)
	if err != nil {
		return FactorizedRationalFunction{}, err
	}
	return NewFactorizedRationalFunction(num, den)
}

func (f FactorizedRationalFunction) Neg() FactorizedRationalFunction {
	return FactorizedRationalFunction{num: f.num.Neg(), den: f.Denominator()}
}

func (f FactorizedRationalFunction) Pow(n uint) FactorizedRationalFunction {
	return FactorizedRationalFunction{num: f.num.Pow(n), den: f.Denominator().Pow(n)}
}

func (f FactorizedRationalFunction) Evaluate(a Assignment) (Rational, error) {
	n, err := f.num.Evaluate(a)
	if err != nil {
		return Rational{}, err
	}
	d, err := f.Denominator().Evaluate(a)
	if err != nil {
		return Rational{}, err
	}
	return n.Div(d)
}

func (f FactorizedRationalFunction) GatherVariables() []Variable {
	return unionVariables(f.num.GatherVariables(), f.Denominator().GatherVariables())
}

func (f FactorizedRationalFunction) Equal(g FactorizedRationalFunction) bool {
	return f.num.Equal(g.num) && f.Denominator().Equal(g.Denominator())
}

// RationalFunction expands both sides.
func (f FactorizedRationalFunction) RationalFunction() RationalFunction {
	return RationalFunction{num: f.num.Expand(), den: f.Denominator().Expand()}
}

// String wraps each side in parentheses unless it is a single bare factor,
// which already prints parenthesised.
func (f FactorizedRationalFunction) String() string {
	return wrapFactorized(f.num) + "/" + wrapFactorized(f.Denominator())
}

func wrapFactorized(a FactorizedPolynomial) string {
	s := a.String()
	fs := a.Factors()
	if a.coeff.IsOne() && len(fs) == 1 && fs[0].Exp == 1 && !fs[0].Factor.isVariable() {
		return s
	}
	return "(" + s + ")"
}
