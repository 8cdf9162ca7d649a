// Package metrics provides shared helpers for the prebuilt metrics
package metrics

import (
	"errors"
	"fmt"

	"github.com/metricflow/metricflow/internal/core/metric"
)

// Domain errors - DRY principle: defined once, used everywhere
var (
	ErrMissingTruth = errors.New("batch has no ground-truth series")
)

// DefaultThreshold separates positive from negative in binary metrics
const DefaultThreshold = 0.5

// mustRegister wires a metric kind into the default registry at package
// initialization. A failure here is a programmer error (duplicate kind).
func mustRegister(kind string, builder metric.Builder) {
	if err := metric.Register(kind, builder); err != nil {
		panic(fmt.Sprintf("metrics: registering %s: %v", kind, err))
	}
}

// requireTruth validates a batch that needs ground-truth labels
func requireTruth(batch metric.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	if batch.Truth == nil {
		return ErrMissingTruth
	}
	return nil
}

// positive reports whether a value crosses the decision threshold
func positive(value, threshold float64) bool {
	return value > threshold
}

// safeDivide returns a/b, or 0 when b is 0
func safeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
