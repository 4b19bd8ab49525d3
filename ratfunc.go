package carl

import "fmt"

// ============================================================
// RationalFunction — quotient of two polynomials
// ============================================================

// RationalFunction is num/den with den != 0. Arithmetic never cancels
// common factors; call Normalize for that.
type RationalFunction struct {
	num Polynomial
	den Polynomial
}

func NewRationalFunction(num, den Polynomial) (RationalFunction, error) {
	if den.IsZero() {
		return RationalFunction{}, fmt.Errorf("%w: (%s)/(0)", ErrDivisionByZero, num)
	}
	return RationalFunction{num: num, den: den}, nil
}

func (p Polynomial) RationalFunction() RationalFunction {
	return RationalFunction{num: p, den: NewRational(1).Polynomial()}
}

func (f RationalFunction) Numerator() Polynomial   { return f.num }
func (f RationalFunction) Denominator() Polynomial { return f.den.orOne() }
func (f RationalFunction) IsZero() bool            { return f.num.IsZero() }
func (f RationalFunction) IsConstant() bool        { return f.num.IsConstant() && f.den.orOne().IsConstant() }
func (f RationalFunction) Kind() Kind              { return KindRationalFunction }

// orOne guards the zero value of RationalFunction, whose denominator is 1.
func (p Polynomial) orOne() Polynomial {
	if p.IsZero() {
		return NewRational(1).Polynomial()
	}
	return p
}

func (f RationalFunction) Add(g RationalFunction) RationalFunction {
	a, b, c, d := f.num, f.Denominator(), g.num, g.Denominator()
	return RationalFunction{num: a.Mul(d).Add(b.Mul(c)), den: b.Mul(d)}
}

func (f RationalFunction) Sub(g RationalFunction) RationalFunction {
	a, b, c, d := f.num, f.Denominator(), g.num, g.Denominator()
	return RationalFunction{num: a.Mul(d).Sub(b.Mul(c)), den: b.Mul(d)}
}

func (f RationalFunction) Mul(g RationalFunction) RationalFunction {
	return RationalFunction{num: f.num.Mul(g.num), den: f.Denominator().Mul(g.Denominator())}
}

func (f RationalFunction) Div(g RationalFunction) (RationalFunction, error) {
	if g.IsZero() {
		return RationalFunction{}, fmt.Errorf("%w: (%s) / 0", ErrDivisionByZero, f)
	}
	return RationalFunction{num: f.num.Mul(g.Denominator()), den: f.Denominator().Mul(g.num)}, nil
}

func (f RationalFunction) Neg() RationalFunction {
	return RationalFunction{num: f.num.Neg(), den: f.Denominator()}
}

func (f RationalFunction) Pow(n uint) RationalFunction {
	return RationalFunction{num: f.num.Pow(n), den: f.Denominator().Pow(n)}
}

// Normalize cancels an exact quotient, the common monomial content, the
// univariate polynomial gcd when both sides live in the same single variable,
// and the rational content. The resulting denominator has coprime integer
// coefficients and a positive leading coefficient. Common factors of
// multivariate operands are only cancelled when they are monomials or when
// the denominator divides the numerator.
func (f RationalFunction) Normalize() RationalFunction {
	num, den := f.num, f.Denominator()
	one := NewRational(1).Polynomial()
	if num.IsZero() {
		return RationalFunction{num: Polynomial{}, den: one}
	}
	if q, ok := num.DivideExact(den); ok {
		return RationalFunction{num: q, den: one}
	}
	if g := num.MonomialContent().GCD(den.MonomialContent()); !g.IsConstant() {
		num, _ = num.divideByTerm(g.Term())
		den, _ = den.divideByTerm(g.Term())
	}
	if g, ok := num.GCD(den); ok && !g.IsConstant() {
		num, _ = num.DivideExact(g)
		den, _ = den.DivideExact(g)
	}
	cn, pn := num.PrimitivePart()
	cd, pd := den.PrimitivePart()
	k, _ := cn.Div(cd)
	return RationalFunction{num: pn.Scale(k), den: pd}
}

func (f RationalFunction) Evaluate(a Assignment) (Rational, error) {
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

func (f RationalFunction) GatherVariables() []Variable {
	return unionVariables(f.num.GatherVariables(), f.Denominator().GatherVariables())
}

func (f RationalFunction) Equal(g RationalFunction) bool {
	return f.num.Equal(g.num) && f.Denominator().Equal(g.Denominator())
}

func (f RationalFunction) String() string {
	return "(" + f.num.String() + ")/(" + f.Denominator().String() + ")"
}

func unionVariables(lists ...[]Variable) []Variable {
	seen := map[uint64]Variable{}
	for _, l := range lists {
		for _, v := range l {
			seen[v.id] = v
		}
	}
	out := make([]Variable, 0, len(seen))
	for _, v := range seen {
		out = append(out, v)
	}
	sortVariables(out)
	return out
}
