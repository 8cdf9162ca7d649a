// Package metric provides the stateful evaluation metric contract: metrics
// accumulate batch statistics into owned state variables and reduce them into
// a scalar or a small set of named scalars.
package metric

import (
	"context"

	"github.com/metricflow/metricflow/internal/core/variable"
	"github.com/metricflow/metricflow/internal/infrastructure/telemetry"
)

// Metric is the contract every evaluation metric satisfies
// PRINCIPLES:
// - ISP: Accumulate, read, reset - nothing else
// - DIP: Callers depend on this interface, not concrete metrics
// - SRP: Single responsibility - evaluation statistics over batches
type Metric interface {
	// Name returns the metric instance name
	Name() string

	// DType returns the dtype of the metric result
	DType() variable.DType

	// UpdateState accumulates one batch of statistics into the state variables
	UpdateState(ctx context.Context, batch Batch) error

	// Result reduces current state into a scalar or named scalars without mutation
	Result() (Value, error)

	// ResetState zeroes every effective state variable
	ResetState() error

	// Variables returns the effective variable set: own variables followed by
	// each child metric's own variables, in registration order
	Variables() []*variable.Variable

	// base gives the package access to shared bookkeeping; it also restricts
	// implementations to types that embed Base
	base() *Base
}

// Batch carries one batch of model output into UpdateState.
// Values is the primary series; Truth and Weights are optional and, when
// present, must align with Values element-wise.
type Batch struct {
	Values  []float64 `json:"values"`
	Truth   []float64 `json:"truth,omitempty"`
	Weights []float64 `json:"weights,omitempty"`
}

// Validate ensures batch integrity
func (b Batch) Validate() error {
	if len(b.Values) == 0 {
		return ErrEmptyBatch
	}
	if b.Truth != nil && len(b.Truth) != len(b.Values) {
		return ErrLengthMismatch
	}
	if b.Weights != nil && len(b.Weights) != len(b.Values) {
		return ErrLengthMismatch
	}
	return nil
}

// Len returns the number of samples in the batch
func (b Batch) Len() int {
	return len(b.Values)
}

// WeightAt returns the sample weight at index i, defaulting to 1
func (b Batch) WeightAt(i int) float64 {
	if b.Weights == nil {
		return 1
	}
	return b.Weights[i]
}

// Value is a metric result: a scalar, or a small mapping of named scalars
type Value struct {
	Scalar float64            `json:"scalar"`
	Named  map[string]float64 `json:"named,omitempty"`
}

// ScalarValue wraps a plain scalar result
func ScalarValue(v float64) Value {
	return Value{Scalar: v}
}

// NamedValue wraps a mapping of named scalar results
func NamedValue(named map[string]float64) Value {
	return Value{Named: named}
}

// IsNamed reports whether the result is a mapping rather than a scalar
func (v Value) IsNamed() bool {
	return v.Named != nil
}

// Invoke runs one accumulate-then-read cycle: UpdateState followed by Result.
// The metric must have a constructed Base.
func Invoke(ctx context.Context, m Metric, batch Batch) (Value, error) {
	if m == nil {
		return Value{}, ErrNilMetric
	}
	if !m.base().initialized() {
		return Value{}, ErrBaseNotInitialized
	}
	if err := m.UpdateState(ctx, batch); err != nil {
		return Value{}, err
	}
	telemetry.MetricUpdated(m.base().Kind())

	result, err := m.Result()
	if err != nil {
		return Value{}, err
	}
	telemetry.MetricResulted(m.base().Kind())
	return result, nil
}
