// Package metric defines domain-specific errors
package metric

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	// Usage errors: programming mistakes in a metric implementation
	ErrBaseNotInitialized = errors.New("metric base not initialized: construct it with metric.NewBase before creating state")
	ErrNotImplemented     = errors.New("not implemented")

	// Registration errors
	ErrNilVariable = errors.New("variable cannot be nil")
	ErrNilMetric   = errors.New("metric cannot be nil")
	ErrSelfChild   = errors.New("metric cannot be its own child")

	// Batch errors
	ErrEmptyBatch     = errors.New("batch has no values")
	ErrLengthMismatch = errors.New("batch series lengths do not match")

	// Config errors
	ErrInvalidName = errors.New("invalid metric name")

	// Kind registry errors
	ErrUnknownKind   = errors.New("unknown metric kind")
	ErrDuplicateKind = errors.New("metric kind already registered")
	ErrInvalidKind   = errors.New("invalid metric kind")
	ErrNilBuilder    = errors.New("builder cannot be nil")
)
