package carl

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func mustPoly(t *testing.T, pool *VariablePool, src string) Polynomial {
	t.Helper()
	p, err := ParsePolynomial(src, pool)
	require.NoError(t, err, src)
	return p
}

func factorStrings(fp FactorizedPolynomial) []string {
	var out []string
	for _, f := range fp.Factors() {
		out = append(out, f.Factor.String())
	}
	return out
}

func TestIntern_SplitsContentAndSharesHandles(t *testing.T) {
	pool := NewVariablePool()
	c := NewFactorizationCache()

	k1, f1 := c.Intern(mustPoly(t, pool, "2*x+4"))
	k2, f2 := c.Intern(mustPoly(t, pool, "x+2"))
	k3, f3 := c.Intern(mustPoly(t, pool, "-x-2"))

	assert.Equal(t, "2", k1.String())
	assert.Equal(t, "1", k2.String())
	assert.Equal(t, "(-1)", k3.String())
	assert.Same(t, f1, f2)
	assert.Same(t, f1, f3)
	assert.Equal(t, "x+2", f1.String())
	assert.Equal(t, 1, c.Len())
	assert.Same(t, c, f1.Cache())

	k, f := c.Intern(NewRational(7).Polynomial())
	assert.Nil(t, f)
	assert.Equal(t, "7", k.String())
}

func TestFactorize_MonomialContentAndRoots(t *testing.T) {
	pool := NewVariablePool()
	c := NewFactorizationCache()

	fp := c.Factorize(mustPoly(t, pool, "x^3-x"))
	assert.True(t, fp.Coefficient().IsOne())
	assert.Equal(t, []string{"x", "x+1", "x+(-1)"}, factorStrings(fp))
	assert.Equal(t, "x * (x+1) * (x+(-1))", fp.String())
	assert.True(t, fp.Expand().Equal(mustPoly(t, pool, "x^3-x")))
}

func TestFactorize_Content(t *testing.T) {
	pool := NewVariablePool()
	c := NewFactorizationCache()

	fp := c.Factorize(mustPoly(t, pool, "2*x^2-2"))
	assert.Equal(t, "2", fp.Coefficient().String())
	assert.ElementsMatch(t, []string{"x+1", "x+(-1)"}, factorStrings(fp))

	fp = c.Factorize(mustPoly(t, pool, "1/2*x^2*y"))
	assert.Equal(t, "1/2", fp.Coefficient().String())
	assert.Equal(t, "1/2 * x^2 * y", fp.String())
}

func TestFactorize_RationalRootWithDenominator(t *testing.T) {
	pool := NewVariablePool()
	c := NewFactorizationCache()

	fp := c.Factorize(mustPoly(t, pool, "2*x^2-x"))
	assert.Equal(t, []string{"x", "2*x+(-1)"}, factorStrings(fp))
	assert.True(t, fp.Expand().Equal(mustPoly(t, pool, "2*x^2-x")))
}

func TestFactorize_ReusesInternedFactors(t *testing.T) {
	pool := NewVariablePool()
	src := "x^4+3*x^2+2"

	c := NewFactorizationCache()
	c.Intern(mustPoly(t, pool, "x^2+1"))
	fp := c.Factorize(mustPoly(t, pool, src))
	assert.ElementsMatch(t, []string{"x^2+1", "x^2+2"}, factorStrings(fp))

	off := NewFactorizationCache(WithFactorReuse(false))
	off.Intern(mustPoly(t, pool, "x^2+1"))
	fp = off.Factorize(mustPoly(t, pool, src))
	assert.Equal(t, []string{"x^4+3*x^2+2"}, factorStrings(fp))
}

func TestFactorize_RootSearchBound(t *testing.T) {
	pool := NewVariablePool()
	c := NewFactorizationCache(WithRootSearchBound(0))

	fp := c.Factorize(mustPoly(t, pool, "x^2-1"))
	assert.Equal(t, []string{"x^2+(-1)"}, factorStrings(fp))
}

func TestFactorize_Memoized(t *testing.T) {
	pool := NewVariablePool()
	c := NewFactorizationCache()
	p := mustPoly(t, pool, "x^2*y+x*y")

	a := c.Factorize(p)
	b := c.Factorize(mustPoly(t, pool, "x*y+y*x^2"))
	assert.True(t, a.Equal(b))
	assert.Equal(t, int64(1), c.Stats().Factorizations)
}

func TestFactorize_ConcurrentCallersConverge(t *testing.T) {
	pool := NewVariablePool()
	c := NewFactorizationCache()
	p := mustPoly(t, pool, "x^3+2*x^2-x-2")

	const workers = 16
	results := make([]FactorizedPolynomial, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Factorize(p)
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.True(t, results[0].Equal(results[i]), "worker %d diverged: %s vs %s", i, results[0], results[i])
	}
	assert.Equal(t, int64(1), c.Stats().Factorizations)
	assert.Len(t, results[0].Factors(), 3)
}

func TestIntern_ConcurrentInsertsOneHandle(t *testing.T) {
	pool := NewVariablePool()
	c := NewFactorizationCache()
	p := mustPoly(t, pool, "x*y+1")

	handles := make([]*Factor, 32)
	var wg sync.WaitGroup
	for i := range handles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, handles[i] = c.Intern(p)
		}(i)
	}
	wg.Wait()

	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
	st := c.Stats()
	assert.Equal(t, 1, st.Factors)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, int64(len(handles)-1), st.Hits)
}

func TestIntern_LogsNewFactors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	pool := NewVariablePool()
	c := NewFactorizationCache(WithLogger(zap.New(core)))

	c.Intern(mustPoly(t, pool, "x+1"))
	c.Intern(mustPoly(t, pool, "2*x+2"))

	entries := logs.FilterMessage("interned factor").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, c.ID().String(), fields["cache_id"])
	assert.Equal(t, "x+1", fields["factor"])
}

func TestIntern_RefinesDivisibleHandles(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	pool := NewVariablePool()
	c := NewFactorizationCache(WithLogger(zap.New(core)))

	_, square := c.Intern(mustPoly(t, pool, "x^2+2*x*y+y^2"))
	_, diff := c.Intern(mustPoly(t, pool, "x^2-y^2"))
	require.Nil(t, square.Refinement())

	_, sum := c.Intern(mustPoly(t, pool, "x+y"))
	assert.Equal(t, []FactorPower{{Factor: sum, Exp: 2}}, square.Refinement())

	parts := diff.Refinement()
	require.Len(t, parts, 2)
	assert.Same(t, sum, parts[0].Factor)
	assert.Equal(t, "x+(-1)*y", parts[1].Factor.String())
	assert.Nil(t, sum.Refinement())

	assert.Len(t, logs.FilterMessage("refined factor").All(), 2)

	fp := c.Factorize(mustPoly(t, pool, "x^3+x^2*y-x*y^2-y^3"))
	assert.Equal(t, []string{"x+y", "x+(-1)*y"}, factorStrings(fp))
	assert.Equal(t, uint(2), fp.Factors()[0].Exp)
}

func TestIntern_NoRefinementWithoutReuse(t *testing.T) {
	pool := NewVariablePool()
	c := NewFactorizationCache(WithFactorReuse(false))

	_, diff := c.Intern(mustPoly(t, pool, "x^2-y^2"))
	c.Intern(mustPoly(t, pool, "x+y"))
	assert.Nil(t, diff.Refinement())
}

func TestResolve_NestedRefinements(t *testing.T) {
	pool := NewVariablePool()
	c := NewFactorizationCache(WithRootSearchBound(0))

	fourth := c.Factorize(mustPoly(t, pool, "x^4-1"))
	require.Equal(t, []string{"x^4+(-1)"}, factorStrings(fourth))

	c.Intern(mustPoly(t, pool, "x^2-1"))
	assert.Equal(t, []string{"x^2+1", "x^2+(-1)"}, factorStrings(fourth))

	c.Intern(mustPoly(t, pool, "x-1"))
	assert.Equal(t, []string{"x+1", "x+(-1)", "x^2+1"}, factorStrings(fourth))
	assert.True(t, fourth.Expand().Equal(mustPoly(t, pool, "x^4-1")))
}

func TestDivisors(t *testing.T) {
	tests := []struct {
		n     int64
		bound int64
		want  []int64
	}{
		{12, 100, []int64{1, 2, 3, 4, 6, 12}},
		{-9, 100, []int64{1, 3, 9}},
		{1, 100, []int64{1}},
		{0, 100, nil},
		{101, 100, nil},
	}
	for _, tt := range tests {
		got := divisors(NewRational(tt.n).Numerator(), tt.bound)
		assert.Equal(t, tt.want, got, "divisors(%d)", tt.n)
	}
}
