// Package initializer defines domain-specific errors
package initializer

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	ErrUnknownInitializer = errors.New("unknown initializer")
	ErrInvalidInitializer = errors.New("invalid initializer specification")
)
