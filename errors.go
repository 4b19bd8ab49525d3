package carl

import "errors"

// Errors returned by kernel operations. They are wrapped with context, so
// callers should match them with errors.Is.
var (
	ErrDivisionByZero        = errors.New("carl: division by zero")
	ErrInvalidExponent       = errors.New("carl: invalid exponent")
	ErrIncompatibleExponents = errors.New("carl: incompatible exponents")
	ErrUnboundVariable       = errors.New("carl: unbound variable")
	ErrMalformedLiteral      = errors.New("carl: malformed literal")
	ErrCacheMismatch         = errors.New("carl: operands belong to different factorization caches")
	ErrInexactDivision       = errors.New("carl: inexact division")
)
