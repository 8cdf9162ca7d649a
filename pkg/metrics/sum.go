package metrics

import (
	"context"

	"github.com/metricflow/metricflow/internal/core/metric"
	"github.com/metricflow/metricflow/internal/core/variable"
)

// KindSum identifies the Sum metric in the kind registry
const KindSum = "sum"

// Sum accumulates the weighted sum of all values seen across batches
type Sum struct {
	*metric.Base
	total *variable.Variable
}

// NewSum creates a new sum metric
func NewSum(opts ...metric.Option) (*Sum, error) {
	b, err := metric.NewBase(KindSum, opts...)
	if err != nil {
		return nil, err
	}

	m := &Sum{Base: b}
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

// UpdateState accumulates the weighted sum of the batch values
func (m *Sum) UpdateState(ctx context.Context, batch metric.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	for i, v := range batch.Values {
		if err := m.total.AddScalar(v * batch.WeightAt(i)); err != nil {
			return err
		}
	}
	return nil
}

// Result returns the accumulated sum
func (m *Sum) Result() (metric.Value, error) {
	total, err := m.total.Scalar()
	if err != nil {
		return metric.Value{}, err
	}
	return metric.ScalarValue(total), nil
}

func init() {
	mustRegister(KindSum, func(cfg metric.Config) (metric.Metric, error) {
		return NewSum(cfg.Options()...)
	})
}
