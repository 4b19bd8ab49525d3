package carl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ths-rwth/carl"
)

func TestParseExpr_Kinds(t *testing.T) {
	pool := carl.NewVariablePool()
	tests := []struct {
		src  string
		kind carl.Kind
		want string
	}{
		{"42", carl.KindRational, "42"},
		{"1.25", carl.KindRational, "5/4"},
		{"-3/6", carl.KindRational, "(-1/2)"},
		{"x", carl.KindVariable, "x"},
		{"x*y^2", carl.KindMonomial, "x*y^2"},
		{"3*x", carl.KindTerm, "3*x"},
		{"x+1", carl.KindPolynomial, "x+1"},
		{"1/(x+1)", carl.KindRationalFunction, "(1)/(x+1)"},
		{"2^10", carl.KindRational, "1024"},
		{" ( x ) ", carl.KindVariable, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := carl.ParseExpr(tt.src, pool)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, e.Kind())
			assert.Equal(t, tt.want, e.String())
		})
	}
}

func TestParseExpr_RoundTrip(t *testing.T) {
	pool := carl.NewVariablePool()
	for _, src := range []string{
		"x^3+x",
		"11/2*x^3+x",
		"(-1)*x",
		"x^2+(-1/2)*x*y+(-3)",
	} {
		e, err := carl.ParseExpr(src, pool)
		require.NoError(t, err, src)
		assert.Equal(t, src, e.String())

		again, err := carl.ParseExpr(e.String(), pool)
		require.NoError(t, err)
		assert.True(t, carl.Equal(e, again), "%s did not round trip", src)
	}
}

func TestParseExpr_SharesPoolVariables(t *testing.T) {
	pool := carl.NewVariablePool()
	a, err := carl.ParseExpr("x+y", pool)
	require.NoError(t, err)
	b, err := carl.ParseExpr("y+x", pool)
	require.NoError(t, err)
	assert.True(t, carl.Equal(a, b))
	assert.Equal(t, 2, pool.Len())
}

func TestParseExpr_Errors(t *testing.T) {
	pool := carl.NewVariablePool()
	tests := []struct {
		src  string
		want error
	}{
		{"", carl.ErrMalformedLiteral},
		{"x+", carl.ErrMalformedLiteral},
		{"(x", carl.ErrMalformedLiteral},
		{"x)", carl.ErrMalformedLiteral},
		{"2^x", carl.ErrMalformedLiteral},
		{"x $ y", carl.ErrMalformedLiteral},
		{"1.2.3", carl.ErrMalformedLiteral},
		{"x/0", carl.ErrDivisionByZero},
		{"x^-1", carl.ErrInvalidExponent},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := carl.ParseExpr(tt.src, pool)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParsePolynomial_RejectsRationalFunctions(t *testing.T) {
	pool := carl.NewVariablePool()
	_, err := carl.ParsePolynomial("1/x", pool)
	assert.ErrorIs(t, err, carl.ErrMalformedLiteral)

	p, err := carl.ParsePolynomial("x^2/2", pool)
	require.NoError(t, err)
	assert.Equal(t, "1/2*x^2", p.String())
}

func TestParseExpr_MaxExponent(t *testing.T) {
	pool := carl.NewVariablePool()

	_, err := carl.ParseExpr("x^1025", pool)
	assert.ErrorIs(t, err, carl.ErrInvalidExponent)
	_, err = carl.ParseExpr("(x+y+z)^99999999", pool)
	assert.ErrorIs(t, err, carl.ErrInvalidExponent)

	e, err := carl.ParseExpr("x^1024", pool)
	require.NoError(t, err)
	assert.Equal(t, "x^1024", e.String())

	_, err = carl.ParsePolynomial("x^5", pool, carl.WithMaxExponent(4))
	assert.ErrorIs(t, err, carl.ErrInvalidExponent)

	e, err = carl.ParseExpr("x^2000", pool, carl.WithMaxExponent(0))
	require.NoError(t, err)
	assert.Equal(t, "x^2000", e.String())
}
