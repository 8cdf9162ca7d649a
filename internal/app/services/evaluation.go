// Package services provides application services coordinating metrics,
// snapshots, and evaluation runs
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/metricflow/metricflow/internal/app/dto"
	"github.com/metricflow/metricflow/internal/core/metric"
	"github.com/metricflow/metricflow/internal/core/snapshot"
	"github.com/metricflow/metricflow/internal/infrastructure/telemetry"
)

// EvaluationService manages evaluation runs: it builds metrics from
// registered kinds, feeds batches to every metric in a run, and persists
// snapshots through the configured saver.
// PRINCIPLES:
// - SRP: Manages evaluation run lifecycle
// - DIP: Depends on snapshot.Saver interface, not implementations
// - OCP: New metric kinds arrive through the registry, not code changes
type EvaluationService struct {
	saver snapshot.Saver
	mu    sync.RWMutex
	runs  map[string]*evaluationRun
}

type evaluationRun struct {
	mu      sync.Mutex
	request dto.EvaluationRequest
	metrics []runMetric
	state   dto.EvaluationContext
	status  dto.EvaluationStatus
}

type runMetric struct {
	kind   string
	metric metric.Metric
}

// ServiceOption configures an EvaluationService
type ServiceOption func(*EvaluationService)

// WithSaver enables snapshot persistence for evaluation runs
func WithSaver(saver snapshot.Saver) ServiceOption {
	return func(s *EvaluationService) { s.saver = saver }
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(opts ...ServiceOption) *EvaluationService {
	s := &EvaluationService{
		runs: make(map[string]*evaluationRun),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartRun validates the request, builds one metric per requested kind,
// and registers the run. When ResumeFrom names a stored snapshot, the
// matching metric's state is restored before the run starts.
func (s *EvaluationService) StartRun(ctx context.Context, req dto.EvaluationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	metrics := make([]runMetric, 0, len(req.MetricKinds))
	for _, kind := range req.MetricKinds {
		m, err := metric.FromConfig(kind, metric.Config{Name: kind})
		if err != nil {
			return fmt.Errorf("failed to build metric %q: %w", kind, err)
		}
		metrics = append(metrics, runMetric{kind: kind, metric: m})
	}

	run := &evaluationRun{
		request: req,
		metrics: metrics,
		status:  dto.EvaluationStatusRunning,
		state: dto.EvaluationContext{
			RunID:     req.RunID,
			Config:    req.Config,
			StartTime: time.Now(),
		},
	}

	if req.ResumeFrom != "" {
		if err := s.resume(ctx, run, req.ResumeFrom); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[req.RunID]; exists {
		return fmt.Errorf("run already exists: %s", req.RunID)
	}
	s.runs[req.RunID] = run
	return nil
}

func (s *EvaluationService) resume(ctx context.Context, run *evaluationRun, snapshotID string) error {
	if s.saver == nil {
		return fmt.Errorf("cannot resume run %s: no snapshot saver configured", run.request.RunID)
	}
	snap, err := s.saver.Load(ctx, snapshotID)
	if err != nil {
		return fmt.Errorf("failed to load snapshot %s: %w", snapshotID, err)
	}
	for _, rm := range run.metrics {
		if rm.metric.Name() == snap.MetricName {
			if err := snapshot.Restore(rm.metric, snap); err != nil {
				return fmt.Errorf("failed to restore metric %s: %w", snap.MetricName, err)
			}
			run.state.CurrentBatch = snap.Metadata.Step
			return nil
		}
	}
	return fmt.Errorf("snapshot %s targets unknown metric %q", snapshotID, snap.MetricName)
}

// ProcessBatch feeds one batch to every metric in the run. With
// StrictBatches set, the first metric error fails the run; otherwise the
// error is returned and the run stays live.
func (s *EvaluationService) ProcessBatch(ctx context.Context, runID string, batch metric.Batch) error {
	run, err := s.run(runID)
	if err != nil {
		return err
	}

	run.mu.Lock()
	defer run.mu.Unlock()

	if run.status != dto.EvaluationStatusRunning {
		return fmt.Errorf("run %s is not running (status: %s)", runID, run.status)
	}
	if err := batch.Validate(); err != nil {
		return fmt.Errorf("%w: %w", dto.ErrInvalidInput, err)
	}
	if max := run.state.Config.MaxBatches; max > 0 && run.state.CurrentBatch >= max {
		return fmt.Errorf("run %s reached batch limit %d", runID, max)
	}

	for _, rm := range run.metrics {
		if err := rm.metric.UpdateState(ctx, batch); err != nil {
			if run.state.Config.StrictBatches {
				run.status = dto.EvaluationStatusFailed
			}
			return fmt.Errorf("metric %s: %w", rm.metric.Name(), err)
		}
		telemetry.MetricUpdated(rm.kind)
	}

	run.state.CurrentBatch++
	run.state.Samples += batch.Len()
	telemetry.SessionBatch()

	if every := run.state.Config.SnapshotEvery; every > 0 && run.state.CurrentBatch%every == 0 {
		if _, err := s.snapshotLocked(ctx, run); err != nil {
			return err
		}
	}
	return nil
}

// Results computes the current value of every metric in the run
func (s *EvaluationService) Results(runID string) (map[string]dto.MetricResult, error) {
	run, err := s.run(runID)
	if err != nil {
		return nil, err
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	return s.resultsLocked(run)
}

func (s *EvaluationService) resultsLocked(run *evaluationRun) (map[string]dto.MetricResult, error) {
	results := make(map[string]dto.MetricResult, len(run.metrics))
	for _, rm := range run.metrics {
		value, err := rm.metric.Result()
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", rm.metric.Name(), err)
		}
		telemetry.MetricResulted(rm.kind)
		results[rm.metric.Name()] = dto.MetricResult{
			Name:   rm.metric.Name(),
			Kind:   rm.kind,
			Scalar: value.Scalar,
			Named:  value.Named,
		}
	}
	return results, nil
}

// Snapshot captures and persists the state of every metric in the run,
// returning the stored snapshot IDs
func (s *EvaluationService) Snapshot(ctx context.Context, runID string) ([]string, error) {
	run, err := s.run(runID)
	if err != nil {
		return nil, err
	}

	run.mu.Lock()
	defer run.mu.Unlock()
	return s.snapshotLocked(ctx, run)
}

func (s *EvaluationService) snapshotLocked(ctx context.Context, run *evaluationRun) ([]string, error) {
	if s.saver == nil {
		return nil, fmt.Errorf("no snapshot saver configured")
	}
	meta := snapshot.Metadata{
		Step:   run.state.CurrentBatch,
		Source: "evaluation",
	}
	ids := make([]string, 0, len(run.metrics))
	for _, rm := range run.metrics {
		snap, err := snapshot.Capture(rm.metric, run.request.RunID, meta)
		if err != nil {
			return nil, fmt.Errorf("failed to capture metric %s: %w", rm.metric.Name(), err)
		}
		if err := s.saver.Save(ctx, snap); err != nil {
			return nil, fmt.Errorf("failed to save snapshot for %s: %w", rm.metric.Name(), err)
		}
		ids = append(ids, snap.ID)
	}
	return ids, nil
}

// ResetRun zeroes every metric in the run and restarts its batch count
func (s *EvaluationService) ResetRun(runID string) error {
	run, err := s.run(runID)
	if err != nil {
		return err
	}

	run.mu.Lock()
	defer run.mu.Unlock()

	for _, rm := range run.metrics {
		if err := rm.metric.ResetState(); err != nil {
			return fmt.Errorf("metric %s: %w", rm.metric.Name(), err)
		}
	}
	run.state.CurrentBatch = 0
	run.state.Samples = 0
	run.status = dto.EvaluationStatusRunning
	return nil
}

// FinishRun computes final results, marks the run completed, and removes
// it from the service
func (s *EvaluationService) FinishRun(ctx context.Context, runID string) (*dto.EvaluationResponse, error) {
	run, err := s.run(runID)
	if err != nil {
		return nil, err
	}

	run.mu.Lock()
	results, resultErr := s.resultsLocked(run)
	endTime := time.Now()
	response := &dto.EvaluationResponse{
		RunID:     run.request.RunID,
		Status:    dto.EvaluationStatusCompleted,
		Results:   results,
		Batches:   run.state.CurrentBatch,
		Samples:   run.state.Samples,
		StartTime: run.state.StartTime,
		EndTime:   endTime,
		Duration:  endTime.Sub(run.state.StartTime),
	}
	if resultErr != nil {
		response.Status = dto.EvaluationStatusFailed
		response.Error = resultErr.Error()
	}
	run.status = response.Status
	run.mu.Unlock()

	s.mu.Lock()
	delete(s.runs, runID)
	s.mu.Unlock()

	return response, nil
}

// Metrics returns the live metrics of a run, keyed by name
func (s *EvaluationService) Metrics(runID string) (map[string]metric.Metric, error) {
	run, err := s.run(runID)
	if err != nil {
		return nil, err
	}

	run.mu.Lock()
	defer run.mu.Unlock()

	metrics := make(map[string]metric.Metric, len(run.metrics))
	for _, rm := range run.metrics {
		metrics[rm.metric.Name()] = rm.metric
	}
	return metrics, nil
}

// ActiveRuns returns the IDs of runs currently registered
func (s *EvaluationService) ActiveRuns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	return ids
}

func (s *EvaluationService) run(runID string) (*evaluationRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, exists := s.runs[runID]
	if !exists {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return run, nil
}
