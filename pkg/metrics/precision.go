package metrics

import (
	"context"

	"github.com/metricflow/metricflow/internal/core/metric"
	"github.com/metricflow/metricflow/internal/core/variable"
)

// KindPrecision identifies the Precision metric in the kind registry
const KindPrecision = "precision"

// Precision accumulates true and false positives and reads as TP/(TP+FP)
type Precision struct {
	*metric.Base
	truePositives  *variable.Variable
	falsePositives *variable.Variable
	threshold      float64
}

// NewPrecision creates a precision metric with the default decision threshold
func NewPrecision(opts ...metric.Option) (*Precision, error) {
	return NewPrecisionWithThreshold(DefaultThreshold, opts...)
}

// NewPrecisionWithThreshold creates a precision metric with an explicit
// decision threshold
func NewPrecisionWithThreshold(threshold float64, opts ...metric.Option) (*Precision, error) {
	b, err := metric.NewBase(KindPrecision, opts...)
	if err != nil {
		return nil, err
	}

	m := &Precision{Base: b, threshold: threshold}
	m.truePositives, err = m.AddVariable(metric.VariableSpec{
		Name:        "true_positives",
		Shape:       variable.Scalar,
		Initializer: "zeros",
	})
	if err != nil {
		return nil, err
	}
	m.falsePositives, err = m.AddVariable(metric.VariableSpec{
		Name:        "false_positives",
		Shape:       variable.Scalar,
		Initializer: "zeros",
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateState accumulates true and false positives from the batch
func (m *Precision) UpdateState(ctx context.Context, batch metric.Batch) error {
	if err := requireTruth(batch); err != nil {
		return err
	}
	for i, v := range batch.Values {
		if !positive(v, m.threshold) {
			continue
		}
		w := batch.WeightAt(i)
		if positive(batch.Truth[i], m.threshold) {
			if err := m.truePositives.AddScalar(w); err != nil {
				return err
			}
		} else {
			if err := m.falsePositives.AddScalar(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// Result returns TP/(TP+FP), or 0 when no positives were predicted
func (m *Precision) Result() (metric.Value, error) {
	tp, err := m.truePositives.Scalar()
	if err != nil {
		return metric.Value{}, err
	}
	fp, err := m.falsePositives.Scalar()
	if err != nil {
		return metric.Value{}, err
	}
	return metric.ScalarValue(safeDivide(tp, tp+fp)), nil
}

func init() {
	mustRegister(KindPrecision, func(cfg metric.Config) (metric.Metric, error) {
		return NewPrecision(cfg.Options()...)
	})
}
