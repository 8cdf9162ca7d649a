// Package snapshot provides persistence of accumulated metric state between
// evaluation runs. A snapshot carries the full variable state of one metric;
// it is the counterpart of the metric config, which carries identity only.
package snapshot

import (
	"time"

	"github.com/google/uuid"

	"github.com/metricflow/metricflow/internal/core/metric"
	"github.com/metricflow/metricflow/internal/core/variable"
)

// Version identifies the snapshot payload layout
const Version = "1"

// VariableState is the captured contents of one state variable. Entries are
// ordered exactly like the metric's effective variable set, so names do not
// need to be unique across children.
type VariableState struct {
	Name   string    `json:"name"`
	Shape  []int     `json:"shape"`
	DType  string    `json:"dtype"`
	Values []float64 `json:"values"`
}

// Snapshot represents the saved state of one metric at a point in time
// PRINCIPLES:
// - KISS: Simple struct with clear fields
// - SRP: Only responsible for snapshot data structure
type Snapshot struct {
	ID         string          `json:"id"`
	MetricName string          `json:"metric_name"`
	RunID      string          `json:"run_id"`
	Variables  []VariableState `json:"variables"`
	Metadata   Metadata        `json:"metadata"`
	Timestamp  time.Time       `json:"timestamp"`
	Version    string          `json:"version"`
}

// Metadata contains additional information about a snapshot
type Metadata struct {
	Step   int      `json:"step"`
	Source string   `json:"source,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// Validate ensures snapshot integrity
func (s *Snapshot) Validate() error {
	if s.ID == "" {
		return ErrInvalidSnapshotID
	}
	if s.MetricName == "" {
		return ErrInvalidMetricName
	}
	if s.RunID == "" {
		return ErrInvalidRunID
	}
	if len(s.Variables) == 0 {
		return ErrEmptyState
	}
	return nil
}

// Capture reads the effective variable state of a metric into a new snapshot
func Capture(m metric.Metric, runID string, meta Metadata) (*Snapshot, error) {
	if m == nil {
		return nil, metric.ErrNilMetric
	}
	if m.Name() == "" {
		return nil, metric.ErrBaseNotInitialized
	}
	if runID == "" {
		return nil, ErrInvalidRunID
	}

	vars := m.Variables()
	states := make([]VariableState, 0, len(vars))
	for _, v := range vars {
		states = append(states, VariableState{
			Name:   v.Name(),
			Shape:  v.Shape(),
			DType:  string(v.DType()),
			Values: v.Value(),
		})
	}
	if len(states) == 0 {
		return nil, ErrEmptyState
	}

	return &Snapshot{
		ID:         uuid.NewString(),
		MetricName: m.Name(),
		RunID:      runID,
		Variables:  states,
		Metadata:   meta,
		Timestamp:  time.Now().UTC(),
		Version:    Version,
	}, nil
}

// Restore writes the captured state back into a metric. The metric's
// effective variable set must match the snapshot entry-for-entry in order,
// name, and shape.
func Restore(m metric.Metric, s *Snapshot) error {
	if m == nil {
		return metric.ErrNilMetric
	}
	if err := s.Validate(); err != nil {
		return err
	}

	vars := m.Variables()
	if len(vars) != len(s.Variables) {
		return ErrStateMismatch
	}
	for i, v := range vars {
		state := s.Variables[i]
		if v.Name() != state.Name || !v.Shape().Equal(variable.Shape(state.Shape)) {
			return ErrStateMismatch
		}
	}

	// Shapes verified above; assign in a second pass so a mismatch cannot
	// leave the metric half-restored
	for i, v := range vars {
		if err := v.Assign(s.Variables[i].Values); err != nil {
			return err
		}
	}
	return nil
}
