package metrics

import (
	"context"

	"github.com/metricflow/metricflow/internal/core/metric"
	"github.com/metricflow/metricflow/internal/core/variable"
)

// KindCount identifies the Count metric in the kind registry
const KindCount = "count"

// Count accumulates the (weighted) number of truthy values seen across
// batches. A value is truthy when it is non-zero.
// PRINCIPLES:
// - KISS: One scalar state variable, one pass per batch
// - SRP: Counting only - thresholded decisions live in the classification metrics
type Count struct {
	*metric.Base
	total *variable.Variable
}

// NewCount creates a new count metric
func NewCount(opts ...metric.Option) (*Count, error) {
	b, err := metric.NewBase(KindCount, opts...)
	if err != nil {
		return nil, err
	}

	m := &Count{Base: b}
	m.total, err = m.AddVariable(metric.VariableSpec{
		Name:        "total",
		Shape:       variable.Scalar,
		Initializer: "zeros",
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateState accumulates the weighted count of truthy values in the batch
func (m *Count) UpdateState(ctx context.Context, batch metric.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	for i, v := range batch.Values {
		if v != 0 {
			if err := m.total.AddScalar(batch.WeightAt(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// Result returns the accumulated count
func (m *Count) Result() (metric.Value, error) {
	total, err := m.total.Scalar()
	if err != nil {
		return metric.Value{}, err
	}
	return metric.ScalarValue(total), nil
}

func init() {
	mustRegister(KindCount, func(cfg metric.Config) (metric.Metric, error) {
		return NewCount(cfg.Options()...)
	})
}
