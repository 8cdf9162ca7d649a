package metricflow

import (
	"context"
	"time"

	memory "github.com/metricflow/metricflow/internal/adapters/repository/memory"
	"github.com/metricflow/metricflow/internal/app/dto"
	"github.com/metricflow/metricflow/internal/app/services"
	coremetric "github.com/metricflow/metricflow/internal/core/metric"
	coresnapshot "github.com/metricflow/metricflow/internal/core/snapshot"

	// Register the built-in metric kinds
	_ "github.com/metricflow/metricflow/pkg/metrics"
)

// Re-export core metric types for convenience
type Metric = coremetric.Metric
type Batch = coremetric.Batch
type Value = coremetric.Value
type Config = coremetric.Config
type Snapshot = coresnapshot.Snapshot
type Saver = coresnapshot.Saver

// Kinds lists all metric kinds available to sessions
func Kinds() []string {
	return coremetric.Kinds()
}

// New builds a metric of the given kind with a fresh zeroed state
func New(kind string, cfg Config) (Metric, error) {
	return coremetric.FromConfig(kind, cfg)
}

// Session is a façade over the evaluation service for running one
// evaluation without importing internal packages. The default session
// stores snapshots in memory and is suitable for local usage and tests.
type Session struct {
	service *services.EvaluationService
	runID   string
}

// SessionOption configures a session
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	saver         Saver
	snapshotEvery int
	timeout       time.Duration
}

// WithSaver stores session snapshots in the given saver instead of memory
func WithSaver(saver Saver) SessionOption {
	return func(c *sessionConfig) { c.saver = saver }
}

// WithSnapshotEvery saves snapshots every n batches
func WithSnapshotEvery(n int) SessionOption {
	return func(c *sessionConfig) { c.snapshotEvery = n }
}

// WithTimeout bounds the session run time
func WithTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) { c.timeout = d }
}

// NewSession starts an evaluation over the given metric kinds
func NewSession(ctx context.Context, runID string, kinds []string, opts ...SessionOption) (*Session, error) {
	cfg := sessionConfig{saver: memory.NewInMemorySaver()}
	for _, opt := range opts {
		opt(&cfg)
	}

	service := services.NewEvaluationService(services.WithSaver(cfg.saver))
	req := dto.EvaluationRequest{
		RunID:       runID,
		MetricKinds: kinds,
		Config: dto.EvaluationConfig{
			SnapshotEvery: cfg.snapshotEvery,
			Timeout:       cfg.timeout,
		},
	}
	if err := service.StartRun(ctx, req); err != nil {
		return nil, err
	}
	return &Session{service: service, runID: runID}, nil
}

// Update feeds one batch to every metric in the session
func (s *Session) Update(ctx context.Context, batch Batch) error {
	return s.service.ProcessBatch(ctx, s.runID, batch)
}

// Results computes current values for every metric, keyed by name
func (s *Session) Results() (map[string]dto.MetricResult, error) {
	return s.service.Results(s.runID)
}

// Reset zeroes every metric in the session
func (s *Session) Reset() error {
	return s.service.ResetRun(s.runID)
}

// Snapshot persists the state of every metric, returning snapshot IDs
func (s *Session) Snapshot(ctx context.Context) ([]string, error) {
	return s.service.Snapshot(ctx, s.runID)
}

// Metrics returns the session's live metrics, keyed by name
func (s *Session) Metrics() (map[string]Metric, error) {
	return s.service.Metrics(s.runID)
}

// Finish computes final results and closes the session
func (s *Session) Finish(ctx context.Context) (*dto.EvaluationResponse, error) {
	return s.service.FinishRun(ctx, s.runID)
}
