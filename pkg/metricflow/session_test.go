package metricflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()

	session, err := NewSession(ctx, "run-1", []string{"mean", "binary_accuracy"})
	require.NoError(t, err)

	require.NoError(t, session.Update(ctx, Batch{
		Values: []float64{1, 0, 1},
		Truth:  []float64{1, 1, 1},
	}))

	results, err := session.Results()
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, results["mean"].Scalar, 1e-9)
	assert.InDelta(t, 2.0/3.0, results["binary_accuracy"].Scalar, 1e-9)

	require.NoError(t, session.Reset())
	results, err = session.Results()
	require.NoError(t, err)
	assert.Zero(t, results["mean"].Scalar)

	require.NoError(t, session.Update(ctx, Batch{Values: []float64{4}, Truth: []float64{1}}))
	resp, err := session.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Batches)
	assert.InDelta(t, 4.0, resp.Results["mean"].Scalar, 1e-9)
}

func TestSessionSnapshot(t *testing.T) {
	ctx := context.Background()

	session, err := NewSession(ctx, "run-1", []string{"sum"})
	require.NoError(t, err)

	require.NoError(t, session.Update(ctx, Batch{Values: []float64{2, 3}}))
	ids, err := session.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestSessionUnknownKind(t *testing.T) {
	_, err := NewSession(context.Background(), "run-1", []string{"bogus"})
	assert.Error(t, err)
}

func TestNewAndKinds(t *testing.T) {
	assert.Contains(t, Kinds(), "mean")
	assert.Contains(t, Kinds(), "f1")

	m, err := New("mean", Config{Name: "val_mean"})
	require.NoError(t, err)
	assert.Equal(t, "val_mean", m.Name())
}
