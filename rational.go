package carl

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ============================================================
// Rational — exact fraction
// ============================================================

// Rational is an immutable exact fraction in lowest terms with a positive
// denominator. The zero value is 0.
type Rational struct{ val *big.Rat }

func NewRational(n int64) Rational { return Rational{val: new(big.Rat).SetInt64(n)} }

// NewFraction returns num/den reduced to lowest terms.
func NewFraction(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, fmt.Errorf("%w: %d/0", ErrDivisionByZero, num)
	}
	return Rational{val: new(big.Rat).SetFrac64(num, den)}, nil
}

// MustFraction is like NewFraction but panics on a zero denominator.
func MustFraction(num, den int64) Rational {
	r, err := NewFraction(num, den)
	if err != nil {
		panic(err)
	}
	return r
}

func RationalFromBig(num, den *big.Int) (Rational, error) {
	if den.Sign() == 0 {
		return Rational{}, fmt.Errorf("%w: %s/0", ErrDivisionByZero, num)
	}
	return Rational{val: new(big.Rat).SetFrac(num, den)}, nil
}

func ratOf(v *big.Rat) Rational { return Rational{val: v} }

// RationalFromFloat converts f through its shortest round-tripping decimal
// representation, so -3.3 becomes -33/10 rather than the binary expansion.
func RationalFromFloat(f float64) (Rational, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Rational{}, fmt.Errorf("%w: %v", ErrMalformedLiteral, f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	v, ok := new(big.Rat).SetString(s)
	if !ok {
		return Rational{}, fmt.Errorf("%w: %q", ErrMalformedLiteral, s)
	}
	return Rational{val: v}, nil
}

// ParseRational reads a fraction written as "num/den".
func ParseRational(s string) (Rational, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return Rational{}, fmt.Errorf("%w: %q is not of the form num/den", ErrMalformedLiteral, s)
	}
	num, ok := new(big.Int).SetString(strings.TrimSpace(parts[0]), 10)
	if !ok {
		return Rational{}, fmt.Errorf("%w: bad numerator in %q", ErrMalformedLiteral, s)
	}
	den, ok := new(big.Int).SetString(strings.TrimSpace(parts[1]), 10)
	if !ok {
		return Rational{}, fmt.Errorf("%w: bad denominator in %q", ErrMalformedLiteral, s)
	}
	return RationalFromBig(num, den)
}

func (r Rational) rat() *big.Rat {
	if r.val == nil {
		return new(big.Rat)
	}
	return r.val
}

func (r Rational) Add(o Rational) Rational { return ratOf(new(big.Rat).Add(r.rat(), o.rat())) }
func (r Rational) Sub(o Rational) Rational { return ratOf(new(big.Rat).Sub(r.rat(), o.rat())) }
func (r Rational) Mul(o Rational) Rational { return ratOf(new(big.Rat).Mul(r.rat(), o.rat())) }
func (r Rational) Neg() Rational           { return ratOf(new(big.Rat).Neg(r.rat())) }
func (r Rational) Abs() Rational           { return ratOf(new(big.Rat).Abs(r.rat())) }

func (r Rational) Div(o Rational) (Rational, error) {
	if o.IsZero() {
		return Rational{}, fmt.Errorf("%w: %s / 0", ErrDivisionByZero, r)
	}
	return ratOf(new(big.Rat).Quo(r.rat(), o.rat())), nil
}

func (r Rational) Inv() (Rational, error) {
	if r.IsZero() {
		return Rational{}, fmt.Errorf("%w: inverse of 0", ErrDivisionByZero)
	}
	return ratOf(new(big.Rat).Inv(r.rat())), nil
}

// Pow raises r to a non-negative integer power. r^0 is 1 for every r.
func (r Rational) Pow(n int) (Rational, error) {
	if n < 0 {
		return Rational{}, fmt.Errorf("%w: %s^%d", ErrInvalidExponent, r, n)
	}
	return r.powUint(uint(n)), nil
}

func (r Rational) powUint(n uint) Rational {
	e := new(big.Int).SetUint64(uint64(n))
	num := new(big.Int).Exp(r.rat().Num(), e, nil)
	den := new(big.Int).Exp(r.rat().Denom(), e, nil)
	return ratOf(new(big.Rat).SetFrac(num, den))
}

func (r Rational) Sign() int                   { return r.rat().Sign() }
func (r Rational) IsZero() bool                { return r.Sign() == 0 }
func (r Rational) IsOne() bool                 { return r.rat().IsInt() && r.rat().Num().IsInt64() && r.rat().Num().Int64() == 1 }
func (r Rational) IsInteger() bool             { return r.rat().IsInt() }
func (r Rational) Cmp(o Rational) int          { return r.rat().Cmp(o.rat()) }
func (r Rational) Equal(o Rational) bool       { return r.Cmp(o) == 0 }
func (r Rational) NotEqual(o Rational) bool    { return r.Cmp(o) != 0 }
func (r Rational) Less(o Rational) bool        { return r.Cmp(o) < 0 }
func (r Rational) LessEq(o Rational) bool      { return r.Cmp(o) <= 0 }
func (r Rational) Greater(o Rational) bool     { return r.Cmp(o) > 0 }
func (r Rational) GreaterEq(o Rational) bool   { return r.Cmp(o) >= 0 }
func (r Rational) Rat() *big.Rat               { return new(big.Rat).Set(r.rat()) }
func (r Rational) Numerator() *big.Int         { return new(big.Int).Set(r.rat().Num()) }
func (r Rational) Denominator() *big.Int       { return new(big.Int).Set(r.rat().Denom()) }
func (r Rational) Float64() float64            { f, _ := r.rat().Float64(); return f }
func (r Rational) Int() *big.Int               { return new(big.Int).Quo(r.rat().Num(), r.rat().Denom()) }
func (r Rational) Int64() int64                { return r.Int().Int64() }
func (r Rational) plain() string               { return r.rat().RatString() }
func (r Rational) Kind() Kind                  { return KindRational }
func (r Rational) GatherVariables() []Variable { return nil }

func (r Rational) Evaluate(Assignment) (Rational, error) { return r, nil }

// String renders non-negative values as "n" or "n/d" and negative values
// in parentheses, "(-n)" or "(-n/d)".
func (r Rational) String() string {
	if r.Sign() < 0 {
		return "(" + r.plain() + ")"
	}
	return r.plain()
}

// RationalGCD returns gcd(|a.num|, |b.num|) / lcm(a.den, b.den). The gcd of
// zero and b is |b|.
func RationalGCD(a, b Rational) Rational {
	num := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a.rat().Num()), new(big.Int).Abs(b.rat().Num()))
	den := lcmInt(a.rat().Denom(), b.rat().Denom())
	return ratOf(new(big.Rat).SetFrac(num, den))
}

// RationalLCM returns lcm(|a.num|, |b.num|) / gcd(a.den, b.den).
func RationalLCM(a, b Rational) Rational {
	if a.IsZero() || b.IsZero() {
		return Rational{}
	}
	num := lcmInt(new(big.Int).Abs(a.rat().Num()), new(big.Int).Abs(b.rat().Num()))
	den := new(big.Int).GCD(nil, nil, a.rat().Denom(), b.rat().Denom())
	return ratOf(new(big.Rat).SetFrac(num, den))
}

func lcmInt(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return new(big.Int)
	}
	g := new(big.Int).GCD(nil, nil, a, b)
	l := new(big.Int).Quo(new(big.Int).Mul(a, b), g)
	return l.Abs(l)
}
