package metrics

import (
	"context"

	"github.com/metricflow/metricflow/internal/core/metric"
)

// KindF1 identifies the F1 metric in the kind registry
const KindF1 = "f1"

// F1 is the harmonic mean of precision and recall. It owns no state of its
// own: the precision and recall accumulators are child metrics, so its
// effective variable set is exactly theirs and a reset zeroes both.
// PRINCIPLES:
// - DRY: Reuses the precision/recall accumulators instead of re-counting
// - SRP: Only composes child results into the final score
type F1 struct {
	*metric.Base
	precision *Precision
	recall    *Recall
}

// NewF1 creates an F1 metric with the default decision threshold
func NewF1(opts ...metric.Option) (*F1, error) {
	return NewF1WithThreshold(DefaultThreshold, opts...)
}

// NewF1WithThreshold creates an F1 metric with an explicit decision threshold
func NewF1WithThreshold(threshold float64, opts ...metric.Option) (*F1, error) {
	b, err := metric.NewBase(KindF1, opts...)
	if err != nil {
		return nil, err
	}
	m := &F1{Base: b}

	m.precision, err = NewPrecisionWithThreshold(threshold, metric.WithName(m.Name()+"_precision"))
	if err != nil {
		return nil, err
	}
	if err := m.RegisterChild(m.precision); err != nil {
		return nil, err
	}

	m.recall, err = NewRecallWithThreshold(threshold, metric.WithName(m.Name()+"_recall"))
	if err != nil {
		return nil, err
	}
	if err := m.RegisterChild(m.recall); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateState forwards the batch to both child accumulators
func (m *F1) UpdateState(ctx context.Context, batch metric.Batch) error {
	if err := m.precision.UpdateState(ctx, batch); err != nil {
		return err
	}
	return m.recall.UpdateState(ctx, batch)
}

// Result returns the precision, recall, and their harmonic mean as named
// scalars
func (m *F1) Result() (metric.Value, error) {
	p, err := m.precision.Result()
	if err != nil {
		return metric.Value{}, err
	}
	r, err := m.recall.Result()
	if err != nil {
		return metric.Value{}, err
	}

	f1 := safeDivide(2*p.Scalar*r.Scalar, p.Scalar+r.Scalar)
	return metric.NamedValue(map[string]float64{
		"precision": p.Scalar,
		"recall":    r.Scalar,
		"f1":        f1,
	}), nil
}

func init() {
	mustRegister(KindF1, func(cfg metric.Config) (metric.Metric, error) {
		return NewF1(cfg.Options()...)
	})
}
