package metrics

import (
	"context"

	"github.com/metricflow/metricflow/internal/core/metric"
	"github.com/metricflow/metricflow/internal/core/variable"
)

// KindBinaryAccuracy identifies the BinaryAccuracy metric in the kind registry
const KindBinaryAccuracy = "binary_accuracy"

// BinaryAccuracy accumulates the weighted fraction of predictions that agree
// with the ground truth after thresholding both sides.
type BinaryAccuracy struct {
	*metric.Base
	correct   *variable.Variable
	total     *variable.Variable
	threshold float64
}

// NewBinaryAccuracy creates a binary accuracy metric with the default
// decision threshold
func NewBinaryAccuracy(opts ...metric.Option) (*BinaryAccuracy, error) {
	return NewBinaryAccuracyWithThreshold(DefaultThreshold, opts...)
}

// NewBinaryAccuracyWithThreshold creates a binary accuracy metric with an
// explicit decision threshold
func NewBinaryAccuracyWithThreshold(threshold float64, opts ...metric.Option) (*BinaryAccuracy, error) {
	b, err := metric.NewBase(KindBinaryAccuracy, opts...)
	if err != nil {
		return nil, err
	}

	m := &BinaryAccuracy{Base: b, threshold: threshold}
	m.correct, err = m.AddVariable(metric.VariableSpec{
		Name:        "correct",
		Shape:       variable.Scalar,
		Initializer: "zeros",
	})
	if err != nil {
		return nil, err
	}
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

// Threshold returns the decision threshold
func (m *BinaryAccuracy) Threshold() float64 { return m.threshold }

// UpdateState accumulates agreement between thresholded values and truth
func (m *BinaryAccuracy) UpdateState(ctx context.Context, batch metric.Batch) error {
	if err := requireTruth(batch); err != nil {
		return err
	}
	for i, v := range batch.Values {
		w := batch.WeightAt(i)
		if positive(v, m.threshold) == positive(batch.Truth[i], m.threshold) {
			if err := m.correct.AddScalar(w); err != nil {
				return err
			}
		}
		if err := m.total.AddScalar(w); err != nil {
			return err
		}
	}
	return nil
}

// Result returns correct/total, or 0 when nothing has been accumulated
func (m *BinaryAccuracy) Result() (metric.Value, error) {
	correct, err := m.correct.Scalar()
	if err != nil {
		return metric.Value{}, err
	}
	total, err := m.total.Scalar()
	if err != nil {
		return metric.Value{}, err
	}
	return metric.ScalarValue(safeDivide(correct, total)), nil
}

func init() {
	mustRegister(KindBinaryAccuracy, func(cfg metric.Config) (metric.Metric, error) {
		return NewBinaryAccuracy(cfg.Options()...)
	})
}
