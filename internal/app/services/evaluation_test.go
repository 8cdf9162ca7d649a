package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metricflow/metricflow/internal/adapters/repository/memory"
	"github.com/metricflow/metricflow/internal/app/dto"
	"github.com/metricflow/metricflow/internal/core/metric"
	"github.com/metricflow/metricflow/internal/core/snapshot"
	"github.com/metricflow/metricflow/internal/infrastructure/naming"
	_ "github.com/metricflow/metricflow/pkg/metrics"
)

func newRunningService(t *testing.T, kinds []string, cfg dto.EvaluationConfig, opts ...ServiceOption) (*EvaluationService, string) {
	t.Helper()
	naming.Reset()
	svc := NewEvaluationService(opts...)
	req := dto.EvaluationRequest{
		RunID:       "run-1",
		MetricKinds: kinds,
		Config:      cfg,
	}
	require.NoError(t, svc.StartRun(context.Background(), req))
	return svc, req.RunID
}

func TestEvaluationService_StartRun(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		svc, runID := newRunningService(t, []string{"mean", "sum"}, dto.EvaluationConfig{})
		assert.Equal(t, []string{runID}, svc.ActiveRuns())

		metrics, err := svc.Metrics(runID)
		require.NoError(t, err)
		assert.Len(t, metrics, 2)
		assert.Contains(t, metrics, "mean")
		assert.Contains(t, metrics, "sum")
	})

	t.Run("UnknownKind", func(t *testing.T) {
		svc := NewEvaluationService()
		err := svc.StartRun(context.Background(), dto.EvaluationRequest{
			RunID:       "run-1",
			MetricKinds: []string{"no_such_metric"},
		})
		assert.ErrorIs(t, err, metric.ErrUnknownKind)
	})

	t.Run("MissingRunID", func(t *testing.T) {
		svc := NewEvaluationService()
		err := svc.StartRun(context.Background(), dto.EvaluationRequest{MetricKinds: []string{"mean"}})
		assert.ErrorIs(t, err, dto.ErrMissingRunID)
	})

	t.Run("NoMetrics", func(t *testing.T) {
		svc := NewEvaluationService()
		err := svc.StartRun(context.Background(), dto.EvaluationRequest{RunID: "run-1"})
		assert.ErrorIs(t, err, dto.ErrNoMetrics)
	})

	t.Run("DuplicateRun", func(t *testing.T) {
		svc, _ := newRunningService(t, []string{"mean"}, dto.EvaluationConfig{})
		err := svc.StartRun(context.Background(), dto.EvaluationRequest{
			RunID:       "run-1",
			MetricKinds: []string{"sum"},
		})
		assert.Error(t, err)
	})
}

func TestEvaluationService_ProcessBatchAndResults(t *testing.T) {
	svc, runID := newRunningService(t, []string{"mean", "sum", "binary_accuracy"}, dto.EvaluationConfig{})
	ctx := context.Background()

	require.NoError(t, svc.ProcessBatch(ctx, runID, metric.Batch{
		Values: []float64{1, 0, 1, 1},
		Truth:  []float64{1, 0, 0, 1},
	}))
	require.NoError(t, svc.ProcessBatch(ctx, runID, metric.Batch{
		Values: []float64{1, 1},
		Truth:  []float64{1, 1},
	}))

	results, err := svc.Results(runID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.InDelta(t, 5.0/6.0, results["mean"].Scalar, 1e-9)
	assert.InDelta(t, 5.0, results["sum"].Scalar, 1e-9)
	assert.InDelta(t, 5.0/6.0, results["binary_accuracy"].Scalar, 1e-9)
	assert.Equal(t, "mean", results["mean"].Kind)
}

func TestEvaluationService_ProcessBatchErrors(t *testing.T) {
	svc, runID := newRunningService(t, []string{"mean"}, dto.EvaluationConfig{MaxBatches: 1})
	ctx := context.Background()

	t.Run("UnknownRun", func(t *testing.T) {
		err := svc.ProcessBatch(ctx, "nope", metric.Batch{Values: []float64{1}})
		assert.Error(t, err)
	})

	t.Run("InvalidBatch", func(t *testing.T) {
		err := svc.ProcessBatch(ctx, runID, metric.Batch{})
		assert.ErrorIs(t, err, dto.ErrInvalidInput)
	})

	t.Run("BatchLimit", func(t *testing.T) {
		require.NoError(t, svc.ProcessBatch(ctx, runID, metric.Batch{Values: []float64{1}}))
		err := svc.ProcessBatch(ctx, runID, metric.Batch{Values: []float64{1}})
		assert.Error(t, err)
	})
}

func TestEvaluationService_ResetRun(t *testing.T) {
	svc, runID := newRunningService(t, []string{"sum"}, dto.EvaluationConfig{})
	ctx := context.Background()

	require.NoError(t, svc.ProcessBatch(ctx, runID, metric.Batch{Values: []float64{2, 3}}))
	require.NoError(t, svc.ResetRun(runID))

	results, err := svc.Results(runID)
	require.NoError(t, err)
	assert.Zero(t, results["sum"].Scalar)

	require.NoError(t, svc.ProcessBatch(ctx, runID, metric.Batch{Values: []float64{4}}))
	results, err = svc.Results(runID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, results["sum"].Scalar, 1e-9)
}

func TestEvaluationService_FinishRun(t *testing.T) {
	svc, runID := newRunningService(t, []string{"mean"}, dto.EvaluationConfig{})
	ctx := context.Background()

	require.NoError(t, svc.ProcessBatch(ctx, runID, metric.Batch{Values: []float64{2, 4}}))

	resp, err := svc.FinishRun(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, dto.EvaluationStatusCompleted, resp.Status)
	assert.Equal(t, 1, resp.Batches)
	assert.Equal(t, 2, resp.Samples)
	assert.InDelta(t, 3.0, resp.Results["mean"].Scalar, 1e-9)
	assert.Empty(t, svc.ActiveRuns())

	_, err = svc.Results(runID)
	assert.Error(t, err)
}

func TestEvaluationService_Snapshots(t *testing.T) {
	saver := memory.NewInMemorySaver()
	svc, runID := newRunningService(t, []string{"sum"}, dto.EvaluationConfig{SnapshotEvery: 2}, WithSaver(saver))
	ctx := context.Background()

	require.NoError(t, svc.ProcessBatch(ctx, runID, metric.Batch{Values: []float64{1}}))
	require.NoError(t, svc.ProcessBatch(ctx, runID, metric.Batch{Values: []float64{2}}))

	snaps, err := saver.List(ctx, snapshot.Filter{RunID: runID})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "sum", snaps[0].MetricName)
	assert.Equal(t, 2, snaps[0].Metadata.Step)

	t.Run("ExplicitSnapshot", func(t *testing.T) {
		ids, err := svc.Snapshot(ctx, runID)
		require.NoError(t, err)
		assert.Len(t, ids, 1)
	})

	t.Run("NoSaverConfigured", func(t *testing.T) {
		bare, bareRun := newRunningService(t, []string{"sum"}, dto.EvaluationConfig{})
		_, err := bare.Snapshot(ctx, bareRun)
		assert.Error(t, err)
	})
}

func TestEvaluationService_Resume(t *testing.T) {
	saver := memory.NewInMemorySaver()
	svc, runID := newRunningService(t, []string{"sum"}, dto.EvaluationConfig{}, WithSaver(saver))
	ctx := context.Background()

	require.NoError(t, svc.ProcessBatch(ctx, runID, metric.Batch{Values: []float64{5, 5}}))
	ids, err := svc.Snapshot(ctx, runID)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	_, err = svc.FinishRun(ctx, runID)
	require.NoError(t, err)

	naming.Reset()
	resumed := NewEvaluationService(WithSaver(saver))
	require.NoError(t, resumed.StartRun(ctx, dto.EvaluationRequest{
		RunID:       "run-2",
		MetricKinds: []string{"sum"},
		ResumeFrom:  ids[0],
	}))

	results, err := resumed.Results("run-2")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, results["sum"].Scalar, 1e-9)
}
