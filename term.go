package carl

// ============================================================
// Term — coefficient times monomial
// ============================================================

type Term struct {
	coeff Rational
	mono  Monomial
}

func NewTerm(coeff Rational, mono Monomial) Term { return Term{coeff: coeff, mono: mono} }

func (r Rational) Term() Term { return Term{coeff: r} }
func (v Variable) Term() Term { return Term{coeff: NewRational(1), mono: NewMonomial(v)} }
func (m Monomial) Term() Term { return Term{coeff: NewRational(1), mono: m} }

func (t Term) Coefficient() Rational { return t.coeff }
func (t Term) Monomial() Monomial    { return t.mono }
func (t Term) IsZero() bool          { return t.coeff.IsZero() }
func (t Term) IsConstant() bool      { return t.mono.IsConstant() }
func (t Term) TotalDegree() uint     { return t.mono.tdeg }
func (t Term) Kind() Kind            { return KindTerm }

func (t Term) Mul(o Term) Term         { return Term{coeff: t.coeff.Mul(o.coeff), mono: t.mono.Mul(o.mono)} }
func (t Term) Scale(r Rational) Term   { return Term{coeff: t.coeff.Mul(r), mono: t.mono} }
func (t Term) Neg() Term               { return Term{coeff: t.coeff.Neg(), mono: t.mono} }
func (t Term) Pow(n uint) Term         { return Term{coeff: t.coeff.powUint(n), mono: t.mono.Pow(n)} }
func (t Term) Equal(o Term) bool       { return t.coeff.Equal(o.coeff) && t.mono.Equal(o.mono) }

func (t Term) GatherVariables() []Variable { return t.mono.Variables() }

// Divide returns t / o when o's monomial divides t's and o is non-zero.
func (t Term) Divide(o Term) (Term, bool) {
	if o.IsZero() {
		return Term{}, false
	}
	m, err := t.mono.Div(o.mono)
	if err != nil {
		return Term{}, false
	}
	c, _ := t.coeff.Div(o.coeff)
	return Term{coeff: c, mono: m}, true
}

func (t Term) Evaluate(a Assignment) (Rational, error) {
	val := t.coeff
	for _, ve := range t.mono.exps {
		x, err := ve.Var.Evaluate(a)
		if err != nil {
			return Rational{}, err
		}
		val = val.Mul(x.powUint(ve.Exp))
	}
	return val, nil
}

func (t Term) String() string {
	switch {
	case t.coeff.IsZero():
		return "0"
	case t.mono.IsConstant():
		return t.coeff.String()
	case t.coeff.IsOne():
		return t.mono.String()
	}
	return t.coeff.String() + "*" + t.mono.String()
}
