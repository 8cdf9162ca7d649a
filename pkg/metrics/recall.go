package metrics

import (
	"context"

	"github.com/metricflow/metricflow/internal/core/metric"
	"github.com/metricflow/metricflow/internal/core/variable"
)

// KindRecall identifies the Recall metric in the kind registry
const KindRecall = "recall"

// Recall accumulates true positives and false negatives and reads as
// TP/(TP+FN)
type Recall struct {
	*metric.Base
	truePositives  *variable.Variable
	falseNegatives *variable.Variable
	threshold      float64
}

// NewRecall creates a recall metric with the default decision threshold
func NewRecall(opts ...metric.Option) (*Recall, error) {
	return NewRecallWithThreshold(DefaultThreshold, opts...)
}

// NewRecallWithThreshold creates a recall metric with an explicit decision
// threshold
func NewRecallWithThreshold(threshold float64, opts ...metric.Option) (*Recall, error) {
	b, err := metric.NewBase(KindRecall, opts...)
	if err != nil {
		return nil, err
	}

	m := &Recall{Base: b, threshold: threshold}
	m.truePositives, err = m.AddVariable(metric.VariableSpec{
		Name:        "true_positives",
		Shape:       variable.Scalar,
		Initializer: "zeros",
	})
	if err != nil {
		return nil, err
	}
	m.falseNegatives, err = m.AddVariable(metric.VariableSpec{
		Name:        "false_negatives",
		Shape:       variable.Scalar,
		Initializer: "zeros",
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateState accumulates true positives and false negatives from the batch
func (m *Recall) UpdateState(ctx context.Context, batch metric.Batch) error {
	if err := requireTruth(batch); err != nil {
		return err
	}
	for i, v := range batch.Values {
		if !positive(batch.Truth[i], m.threshold) {
			continue
		}
		w := batch.WeightAt(i)
		if positive(v, m.threshold) {
			if err := m.truePositives.AddScalar(w); err != nil {
				return err
			}
		} else {
			if err := m.falseNegatives.AddScalar(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// Result returns TP/(TP+FN), or 0 when no actual positives were seen
func (m *Recall) Result() (metric.Value, error) {
	tp, err := m.truePositives.Scalar()
	if err != nil {
		return metric.Value{}, err
	}
	fn, err := m.falseNegatives.Scalar()
	if err != nil {
		return metric.Value{}, err
	}
	return metric.ScalarValue(safeDivide(tp, tp+fn)), nil
}

func init() {
	mustRegister(KindRecall, func(cfg metric.Config) (metric.Metric, error) {
		return NewRecall(cfg.Options()...)
	})
}
