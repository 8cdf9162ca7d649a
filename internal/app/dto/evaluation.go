package dto

import (
	"fmt"
	"time"

	"github.com/metricflow/metricflow/pkg/validation"
)

// EvaluationRequest represents a request to evaluate a stream of batches
// against a set of registered metrics
type EvaluationRequest struct {
	RunID       string           `json:"run_id" validate:"required,run_id"`
	MetricKinds []string         `json:"metric_kinds" validate:"required,min=1,dive,required,metric_kind"`
	Config      EvaluationConfig `json:"config"`
	ResumeFrom  string           `json:"resume_from,omitempty" validate:"omitempty,uuid4"`
}

// EvaluationConfig contains configuration for an evaluation run
type EvaluationConfig struct {
	MaxBatches    int           `json:"max_batches"`    // Maximum number of batches to process
	Timeout       time.Duration `json:"timeout"`        // Run timeout
	SnapshotEvery int           `json:"snapshot_every"` // Save snapshots every N batches, 0 disables
	StrictBatches bool          `json:"strict_batches"` // Fail the run on the first bad batch
}

// EvaluationResponse represents the outcome of an evaluation run
type EvaluationResponse struct {
	RunID     string                  `json:"run_id"`
	Status    EvaluationStatus        `json:"status"`
	Results   map[string]MetricResult `json:"results"`
	Batches   int                     `json:"batches"`
	Samples   int                     `json:"samples"`
	StartTime time.Time               `json:"start_time"`
	EndTime   time.Time               `json:"end_time"`
	Duration  time.Duration           `json:"duration"`
	Error     string                  `json:"error,omitempty"`
}

// EvaluationStatus represents the status of an evaluation run
type EvaluationStatus string

const (
	EvaluationStatusRunning   EvaluationStatus = "running"
	EvaluationStatusCompleted EvaluationStatus = "completed"
	EvaluationStatusFailed    EvaluationStatus = "failed"
	EvaluationStatusStopped   EvaluationStatus = "stopped"
)

// MetricResult carries one metric's current value. Scalar holds the value
// for single-valued metrics; Named holds component values for composite
// metrics and is nil otherwise.
type MetricResult struct {
	Name   string             `json:"name"`
	Kind   string             `json:"kind"`
	Scalar float64            `json:"scalar"`
	Named  map[string]float64 `json:"named,omitempty"`
}

// EvaluationContext holds the running state of an evaluation
type EvaluationContext struct {
	RunID        string
	CurrentBatch int
	Samples      int
	Config       EvaluationConfig
	StartTime    time.Time
}

// Validate validates the evaluation request and applies defaults.
// Structural checks run first, then the field format rules declared
// in the validate tags (run_id, metric_kind, uuid4)
func (req *EvaluationRequest) Validate() error {
	if req.RunID == "" {
		return ErrMissingRunID
	}
	if len(req.MetricKinds) == 0 {
		return ErrNoMetrics
	}
	seen := make(map[string]struct{}, len(req.MetricKinds))
	for _, kind := range req.MetricKinds {
		if _, dup := seen[kind]; dup {
			return fmt.Errorf("%w: duplicate metric kind %q", ErrInvalidConfig, kind)
		}
		seen[kind] = struct{}{}
	}
	if req.Config.MaxBatches < 0 || req.Config.SnapshotEvery < 0 {
		return ErrInvalidConfig
	}
	if err := validation.ValidateWithPlayground(*req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.Config.Timeout <= 0 {
		req.Config.Timeout = 5 * time.Minute // Default timeout
	}
	return nil
}
