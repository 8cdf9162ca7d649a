package metrics

import (
	"context"

	"github.com/metricflow/metricflow/internal/core/metric"
	"github.com/metricflow/metricflow/internal/core/variable"
)

// KindMean identifies the Mean metric in the kind registry
const KindMean = "mean"

// Mean accumulates a weighted running mean over all values seen across
// batches, tracked as two scalar variables: the weighted total and the
// weight count. An empty metric reads as 0 rather than dividing by zero.
type Mean struct {
	*metric.Base
	total *variable.Variable
	count *variable.Variable
}

// NewMean creates a new mean metric
func NewMean(opts ...metric.Option) (*Mean, error) {
	b, err := metric.NewBase(KindMean, opts...)
	if err != nil {
		return nil, err
	}

	m := &Mean{Base: b}
	m.total, err = m.AddVariable(metric.VariableSpec{
		Name:        "total",
		Shape:       variable.Scalar,
		Initializer: "zeros",
	})
	if err != nil {
		return nil, err
	}
	m.count, err = m.AddVariable(metric.VariableSpec{
		Name:        "count",
		Shape:       variable.Scalar,
		Initializer: "zeros",
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateState accumulates the weighted total and the weight count
func (m *Mean) UpdateState(ctx context.Context, batch metric.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	for i, v := range batch.Values {
		w := batch.WeightAt(i)
		if err := m.total.AddScalar(v * w); err != nil {
			return err
		}
		if err := m.count.AddScalar(w); err != nil {
			return err
		}
	}
	return nil
}

// Result returns total/count, or 0 when nothing has been accumulated
func (m *Mean) Result() (metric.Value, error) {
	total, err := m.total.Scalar()
	if err != nil {
		return metric.Value{}, err
	}
	count, err := m.count.Scalar()
	if err != nil {
		return metric.Value{}, err
	}
	return metric.ScalarValue(safeDivide(total, count)), nil
}

func init() {
	mustRegister(KindMean, func(cfg metric.Config) (metric.Metric, error) {
		return NewMean(cfg.Options()...)
	})
}
