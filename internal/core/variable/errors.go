// Package variable defines domain-specific errors
package variable

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	ErrInvalidName    = errors.New("invalid variable name")
	ErrInvalidShape   = errors.New("invalid variable shape")
	ErrInvalidDType   = errors.New("invalid dtype")
	ErrNilInitializer = errors.New("initializer cannot be nil")
	ErrShapeMismatch  = errors.New("value shape does not match variable shape")
	ErrNotScalar      = errors.New("variable is not a scalar")
)
