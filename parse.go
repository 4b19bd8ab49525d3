package carl

import (
	"fmt"
	"math/big"
	"strconv"
	"unicode"
)

// ============================================================
// Parser — infix expressions over a VariablePool
// ============================================================

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var punctuation = map[byte]tokenKind{
	'+': tokPlus, '-': tokMinus, '*': tokStar, '/': tokSlash,
	'^': tokCaret, '(': tokLParen, ')': tokRParen,
}

type lexer struct {
	s string
	i int
}

func (l *lexer) next() token {
	for l.i < len(l.s) && unicode.IsSpace(rune(l.s[l.i])) {
		l.i++
	}
	if l.i >= len(l.s) {
		return token{kind: tokEOF, pos: l.i}
	}
	start := l.i
	if k, ok := punctuation[l.s[l.i]]; ok {
		l.i++
		return token{kind: k, text: l.s[start:l.i], pos: start}
	}
	ch := rune(l.s[l.i])
	switch {
	case ch == '_' || unicode.IsLetter(ch):
		for l.i < len(l.s) && isIdentContinue(rune(l.s[l.i])) {
			l.i++
		}
		return token{kind: tokIdent, text: l.s[start:l.i], pos: start}
	case ch == '.' || unicode.IsDigit(ch):
		seenDot := false
		for l.i < len(l.s) && (unicode.IsDigit(rune(l.s[l.i])) || (l.s[l.i] == '.' && !seenDot)) {
			seenDot = seenDot || l.s[l.i] == '.'
			l.i++
		}
		return token{kind: tokNumber, text: l.s[start:l.i], pos: start}
	}
	l.i++
	return token{kind: tokInvalid, text: string(ch), pos: start}
}

func isIdentContinue(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// DefaultMaxExponent is the largest literal exponent accepted by the parser
// unless WithMaxExponent says otherwise.
const DefaultMaxExponent = 1024

type ParseOption func(*parseOptions)

type parseOptions struct {
	maxExponent int
}

// WithMaxExponent bounds the literal exponents in parsed input. Zero or less
// lifts the bound.
func WithMaxExponent(n int) ParseOption {
	return func(o *parseOptions) { o.maxExponent = n }
}

type parser struct {
	l    lexer
	cur  token
	pool *VariablePool
	typ  VariableType
	opts parseOptions
}

// ParseExpr parses an infix expression such as "x^3+(-1/2)*x*y+(-3)".
// Identifiers are resolved through pool and created as Real variables when
// unknown. Numbers are integers or decimals; fractions are built with '/'.
// Exponents above DefaultMaxExponent fail with ErrInvalidExponent.
func ParseExpr(s string, pool *VariablePool, opts ...ParseOption) (Expr, error) {
	p := &parser{l: lexer{s: s}, pool: pool, typ: VariableReal, opts: parseOptions{maxExponent: DefaultMaxExponent}}
	for _, opt := range opts {
		opt(&p.opts)
	}
	p.next()
	if p.cur.kind == tokEOF {
		return nil, fmt.Errorf("%w: empty expression", ErrMalformedLiteral)
	}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, p.unexpected()
	}
	return e, nil
}

// ParsePolynomial is ParseExpr restricted to polynomial results.
func ParsePolynomial(s string, pool *VariablePool, opts ...ParseOption) (Polynomial, error) {
	e, err := ParseExpr(s, pool, opts...)
	if err != nil {
		return Polynomial{}, err
	}
	if e.Kind() == KindRationalFunction {
		return Polynomial{}, fmt.Errorf("%w: %q is not a polynomial", ErrMalformedLiteral, s)
	}
	return asPolynomial(e), nil
}

func (p *parser) next() { p.cur = p.l.next() }

func (p *parser) unexpected() error {
	if p.cur.kind == tokEOF {
		return fmt.Errorf("%w: unexpected end of input", ErrMalformedLiteral)
	}
	return fmt.Errorf("%w: unexpected %q at offset %d", ErrMalformedLiteral, p.cur.text, p.cur.pos)
}

func (p *parser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokPlus || p.cur.kind == tokMinus {
		op := p.cur.kind
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		if op == tokPlus {
			left = Add(left, right)
		} else {
			left = Sub(left, right)
		}
	}
	return left, nil
}

func (p *parser) parseProduct() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur.kind == tokStar || p.cur.kind == tokSlash {
		op := p.cur.kind
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == tokStar {
			left = Mul(left, right)
			continue
		}
		if left, err = Div(left, right); err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	switch p.cur.kind {
	case tokMinus:
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Neg(x), nil
	case tokPlus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokCaret {
		return base, nil
	}
	p.next()
	sign := 1
	if p.cur.kind == tokMinus {
		sign = -1
		p.next()
	}
	if p.cur.kind != tokNumber {
		return nil, p.unexpected()
	}
	n, err := strconv.Atoi(p.cur.text)
	if err != nil {
		return nil, fmt.Errorf("%w: exponent %q", ErrMalformedLiteral, p.cur.text)
	}
	if limit := p.opts.maxExponent; limit > 0 && n > limit {
		return nil, fmt.Errorf("%w: exponent %d exceeds %d", ErrInvalidExponent, n, limit)
	}
	p.next()
	return Pow(base, sign*n)
}

func (p *parser) parsePrimary() (Expr, error) {
	switch p.cur.kind {
	case tokNumber:
		v, ok := new(big.Rat).SetString(p.cur.text)
		if !ok {
			return nil, fmt.Errorf("%w: number %q", ErrMalformedLiteral, p.cur.text)
		}
		p.next()
		return ratOf(v), nil
	case tokIdent:
		if p.pool == nil {
			return nil, fmt.Errorf("%w: variable %q without a pool", ErrUnboundVariable, p.cur.text)
		}
		v := p.pool.Get(p.cur.text, p.typ)
		p.next()
		return v, nil
	case tokLParen:
		p.next()
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, p.unexpected()
		}
		p.next()
		return e, nil
	}
	return nil, p.unexpected()
}
