package carl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ths-rwth/carl"
)

type factorFixture struct {
	t     *testing.T
	pool  *carl.VariablePool
	cache *carl.FactorizationCache
}

func newFactorFixture(t *testing.T, opts ...carl.CacheOption) *factorFixture {
	return &factorFixture{t: t, pool: carl.NewVariablePool(), cache: carl.NewFactorizationCache(opts...)}
}

func (f *factorFixture) poly(src string) carl.Polynomial {
	f.t.Helper()
	p, err := carl.ParsePolynomial(src, f.pool)
	require.NoError(f.t, err, src)
	return p
}

func (f *factorFixture) fp(src string) carl.FactorizedPolynomial {
	f.t.Helper()
	fp, err := carl.NewFactorizedPolynomial(f.poly(src), f.cache)
	require.NoError(f.t, err, src)
	return fp
}

func (f *factorFixture) frf(num, den string) carl.FactorizedRationalFunction {
	f.t.Helper()
	r, err := carl.NewFactorizedRationalFunction(f.fp(num), f.fp(den))
	require.NoError(f.t, err)
	return r
}

// ============================================================
// FactorizedPolynomial
// ============================================================

func TestFactorized_CommonDivisorAndMultiple(t *testing.T) {
	f := newFactorFixture(t)
	a := f.fp("2*x^2-2")
	b := f.fp("3*x^2+3*x")

	assert.Equal(t, "2 * (x+1) * (x+(-1))", a.String())
	assert.Equal(t, "3 * x * (x+1)", b.String())

	gcd, err := a.CommonDivisor(b)
	require.NoError(t, err)
	assert.Equal(t, "(x+1)", gcd.String())

	lcm, err := a.CommonMultiple(b)
	require.NoError(t, err)
	assert.Equal(t, "6 * x * (x+1) * (x+(-1))", lcm.String())
	assert.True(t, lcm.Expand().Equal(f.poly("6*x^3-6*x")))
}

func TestFactorized_LazyDiv(t *testing.T) {
	f := newFactorFixture(t)
	a, b := f.fp("2*x^2-2"), f.fp("3*x^2+3*x")

	qa, qb, err := a.LazyDiv(b)
	require.NoError(t, err)
	assert.Equal(t, "2 * (x+(-1))", qa.String())
	assert.Equal(t, "3 * x", qb.String())
}

func TestFactorized_Quotient(t *testing.T) {
	f := newFactorFixture(t)
	a := f.fp("2*x^2-2")

	q, err := a.Quotient(f.fp("x+1"))
	require.NoError(t, err)
	assert.Equal(t, "2 * (x+(-1))", q.String())

	_, err = f.fp("x^2+1").Quotient(f.fp("x+1"))
	assert.ErrorIs(t, err, carl.ErrInexactDivision)

	_, err = a.Quotient(carl.FactorizedPolynomial{})
	assert.ErrorIs(t, err, carl.ErrDivisionByZero)
}

func TestFactorized_QuotientByExpansion(t *testing.T) {
	f := newFactorFixture(t, carl.WithRootSearchBound(0), carl.WithFactorReuse(false))
	a := f.fp("x^2-1")
	require.Len(t, a.Factors(), 1)

	q, err := a.Quotient(f.fp("x+1"))
	require.NoError(t, err)
	assert.Equal(t, "(x+(-1))", q.String())
}

func TestFactorized_LaterFactorsRefineEarlierOnes(t *testing.T) {
	f := newFactorFixture(t, carl.WithRootSearchBound(0))
	a := f.fp("x^2-1")
	require.Len(t, a.Factors(), 1)

	b := f.fp("x+1")
	assert.Equal(t, "(x+1) * (x+(-1))", a.String())
	assert.Len(t, a.Factors(), 2)

	q, qb, err := a.LazyDiv(b)
	require.NoError(t, err)
	assert.Equal(t, "(x+(-1))", q.String())
	assert.True(t, qb.IsOne())
}

func TestFactorized_SharedDivisorsOfMultivariateFactors(t *testing.T) {
	f := newFactorFixture(t)
	a := f.fp("x^2-y^2")
	b := f.fp("x+y")

	gcd, err := a.CommonDivisor(b)
	require.NoError(t, err)
	assert.Equal(t, "(x+y)", gcd.String())

	r, err := carl.NewFactorizedRationalFunction(a, b)
	require.NoError(t, err)
	assert.Equal(t, "(x+(-1)*y)/(1)", r.String())
	assert.True(t, r.RationalFunction().Equal(f.poly("x-y").RationalFunction()))
}

func TestFactorized_SquareMatchesPowerOfLaterFactor(t *testing.T) {
	f := newFactorFixture(t)
	sq := f.fp("x^2+2*x*y+y^2")
	base := f.fp("x+y")

	assert.True(t, sq.Equal(base.Pow(2)), "%s vs %s", sq, base.Pow(2))
	assert.Equal(t, "(x+y)^2", sq.String())
	assert.True(t, f.fp("x^2+2*x*y+y^2").Equal(base.Pow(2)))
}

func TestFactorized_UnivariateGCDRefinesBothFactors(t *testing.T) {
	f := newFactorFixture(t, carl.WithRootSearchBound(0))
	a := f.fp("x^3+x^2+x+1")
	b := f.fp("x^3-x^2+x-1")

	gcd, err := a.CommonDivisor(b)
	require.NoError(t, err)
	assert.Equal(t, "(x^2+1)", gcd.String())

	r, err := carl.NewFactorizedRationalFunction(a, b)
	require.NoError(t, err)
	assert.Equal(t, "(x+1)/(x+(-1))", r.String())
}

func TestFactorized_AddPullsOutCommonFactors(t *testing.T) {
	f := newFactorFixture(t)
	sum, err := f.fp("x^2+x").Add(f.fp("2*x+2"))
	require.NoError(t, err)

	assert.Equal(t, "(x+2) * (x+1)", sum.String())
	assert.True(t, sum.Expand().Equal(f.poly("x^2+3*x+2")))
}

func TestFactorized_AddSameCofactors(t *testing.T) {
	f := newFactorFixture(t)
	sum, err := f.fp("x^2-1").Add(f.fp("2*x^2-2"))
	require.NoError(t, err)
	assert.Equal(t, "3 * (x+1) * (x+(-1))", sum.String())

	a := f.fp("x^2-1")
	zero, err := a.Sub(a)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
	assert.Equal(t, "0", zero.String())
}

func TestFactorized_PowAndQueries(t *testing.T) {
	f := newFactorFixture(t)
	a := f.fp("2*x^2-2")

	assert.Equal(t, "(x+1)^3", f.fp("x+1").Pow(3).String())
	assert.True(t, a.Pow(0).IsOne())
	assert.Equal(t, uint(2), a.TotalDegree())
	assert.Equal(t, "(-2)", a.ConstantPart().String())

	x, ok := f.pool.Lookup("x")
	require.True(t, ok)
	val, err := a.Evaluate(carl.Assignment{x: carl.NewRational(3)})
	require.NoError(t, err)
	assert.Equal(t, "16", val.String())
	assert.Equal(t, []carl.Variable{x}, a.GatherVariables())
}

func TestFactorized_CacheRules(t *testing.T) {
	f := newFactorFixture(t)
	other := carl.NewFactorizationCache()
	p := f.poly("x+1")

	b, err := carl.NewFactorizedPolynomial(p, other)
	require.NoError(t, err)
	_, err = f.fp("x+1").Mul(b)
	assert.ErrorIs(t, err, carl.ErrCacheMismatch)

	_, err = carl.NewFactorizedPolynomial(p, nil)
	assert.ErrorIs(t, err, carl.ErrCacheMismatch)

	k, err := carl.NewFactorizedPolynomial(carl.NewRational(5).Polynomial(), nil)
	require.NoError(t, err)
	assert.Equal(t, "5", k.String())

	prod, err := k.Mul(b)
	require.NoError(t, err)
	assert.Same(t, other, prod.Cache())
}

// ============================================================
// FactorizedRationalFunction
// ============================================================

func TestFactorizedRationalFunction_CancelsSharedFactors(t *testing.T) {
	f := newFactorFixture(t)
	r := f.frf("2*x^2-2", "3*x^2+3*x")

	assert.Equal(t, "(2/3 * (x+(-1)))/(x)", r.String())
	assert.True(t, r.Denominator().Coefficient().IsOne())
}

func TestFactorizedRationalFunction_Arithmetic(t *testing.T) {
	f := newFactorFixture(t)
	a := f.frf("1", "x")
	b := f.frf("1", "x+1")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "(2*x+1)/(x^2+x)", sum.RationalFunction().String())

	x, _ := f.pool.Lookup("x")
	val, err := sum.Evaluate(carl.Assignment{x: carl.NewRational(1)})
	require.NoError(t, err)
	assert.Equal(t, "3/2", val.String())

	diff, err := a.Sub(a)
	require.NoError(t, err)
	assert.True(t, diff.IsZero())

	one, err := a.Mul(f.frf("x", "1"))
	require.NoError(t, err)
	assert.Equal(t, "(1)/(1)", one.String())

	q, err := a.Div(b)
	require.NoError(t, err)
	assert.Equal(t, "(x+1)/(x)", q.String())

	_, err = a.Div(carl.FactorizedRationalFunction{})
	assert.ErrorIs(t, err, carl.ErrDivisionByZero)
}

func TestFactorizedRationalFunction_String(t *testing.T) {
	f := newFactorFixture(t)
	tests := []struct {
		num, den string
		want     string
	}{
		{"x+1", "x", "(x+1)/(x)"},
		{"x", "x+1", "(x)/(x+1)"},
		{"x^2+2*x+1", "y", "((x+1)^2)/(y)"},
		{"2*x+2", "y", "(2 * (x+1))/(y)"},
		{"x^2-1", "y+2", "((x+1) * (x+(-1)))/(y+2)"},
		{"3", "x", "(3)/(x)"},
	}
	for _, tt := range tests {
		t.Run(tt.num+"/"+tt.den, func(t *testing.T) {
			assert.Equal(t, tt.want, f.frf(tt.num, tt.den).String())
		})
	}
}

func TestFactorizedRationalFunction_ZeroDenominator(t *testing.T) {
	f := newFactorFixture(t)
	_, err := carl.NewFactorizedRationalFunction(f.fp("x"), carl.FactorizedPolynomial{})
	assert.ErrorIs(t, err, carl.ErrDivisionByZero)
}
