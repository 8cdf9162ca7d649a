package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() EvaluationRequest {
	return EvaluationRequest{
		RunID:       "run-1",
		MetricKinds: []string{"mean", "sum"},
	}
}

func TestEvaluationRequestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		req := validRequest()
		require.NoError(t, req.Validate())
		assert.Equal(t, 5*time.Minute, req.Config.Timeout)
	})

	t.Run("ValidWithResume", func(t *testing.T) {
		req := validRequest()
		req.ResumeFrom = uuid.NewString()
		assert.NoError(t, req.Validate())
	})

	t.Run("MissingRunID", func(t *testing.T) {
		req := validRequest()
		req.RunID = ""
		assert.ErrorIs(t, req.Validate(), ErrMissingRunID)
	})

	t.Run("NoMetrics", func(t *testing.T) {
		req := validRequest()
		req.MetricKinds = nil
		assert.ErrorIs(t, req.Validate(), ErrNoMetrics)
	})

	t.Run("DuplicateKind", func(t *testing.T) {
		req := validRequest()
		req.MetricKinds = []string{"mean", "mean"}
		err := req.Validate()
		require.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("MalformedRunID", func(t *testing.T) {
		req := validRequest()
		req.RunID = "run/1"
		err := req.Validate()
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, err.Error(), "run_id")
	})

	t.Run("MalformedMetricKind", func(t *testing.T) {
		req := validRequest()
		req.MetricKinds = []string{"mean", "Binary Accuracy"}
		err := req.Validate()
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, err.Error(), "metric_kinds")
	})

	t.Run("MalformedResumeFrom", func(t *testing.T) {
		req := validRequest()
		req.ResumeFrom = "not-a-uuid"
		err := req.Validate()
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, err.Error(), "resume_from")
	})

	t.Run("NegativeLimits", func(t *testing.T) {
		for _, mutate := range []func(*EvaluationRequest){
			func(r *EvaluationRequest) { r.Config.MaxBatches = -1 },
			func(r *EvaluationRequest) { r.Config.SnapshotEvery = -1 },
		} {
			req := validRequest()
			mutate(&req)
			err := req.Validate()
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		}
	})

	t.Run("TimeoutPreserved", func(t *testing.T) {
		req := validRequest()
		req.Config.Timeout = time.Second
		require.NoError(t, req.Validate())
		assert.Equal(t, time.Second, req.Config.Timeout)
	})
}
