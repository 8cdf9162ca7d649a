package dto

import "errors"

// Evaluation errors
var (
	ErrMissingRunID     = errors.New("run ID is required")
	ErrNoMetrics        = errors.New("at least one metric is required")
	ErrInvalidConfig    = errors.New("invalid evaluation configuration")
	ErrEvaluationFailed = errors.New("evaluation failed")
	ErrInvalidInput     = errors.New("invalid input provided")
)
