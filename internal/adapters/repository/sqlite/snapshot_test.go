package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metricflow/metricflow/internal/core/snapshot"
)

func newTestSaver(t *testing.T, opts ...Option) *SQLiteSaver {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "snapshots.db")
	saver, err := NewSQLiteSaver(dsn, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = saver.Close() })
	return saver
}

func testSnapshot(metricName, runID string, ts time.Time, tags ...string) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		ID:         uuid.NewString(),
		MetricName: metricName,
		RunID:      runID,
		Variables: []snapshot.VariableState{
			{Name: "true_positives", Shape: []int{}, DType: "float64", Values: []float64{42}},
			{Name: "false_positives", Shape: []int{}, DType: "float64", Values: []float64{8}},
		},
		Metadata:  snapshot.Metadata{Step: 7, Source: "test", Tags: tags},
		Timestamp: ts,
		Version:   snapshot.Version,
	}
}

func TestSQLiteSaver_SaveLoad(t *testing.T) {
	saver := newTestSaver(t)
	ctx := context.Background()

	snap := testSnapshot("precision", "run-1", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, saver.Save(ctx, snap))

	loaded, err := saver.Load(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, loaded.ID)
	assert.Equal(t, "precision", loaded.MetricName)
	assert.Equal(t, "run-1", loaded.RunID)
	require.Len(t, loaded.Variables, 2)
	assert.Equal(t, "true_positives", loaded.Variables[0].Name)
	assert.Equal(t, []float64{42}, loaded.Variables[0].Values)
	assert.Equal(t, 7, loaded.Metadata.Step)
	assert.True(t, snap.Timestamp.Equal(loaded.Timestamp))
	assert.Equal(t, snapshot.Version, loaded.Version)
}

func TestSQLiteSaver_SaveReplaces(t *testing.T) {
	saver := newTestSaver(t)
	ctx := context.Background()

	snap := testSnapshot("precision", "run-1", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, saver.Save(ctx, snap))

	snap.Variables[0].Values = []float64{99}
	snap.Metadata.Step = 8
	require.NoError(t, saver.Save(ctx, snap))

	loaded, err := saver.Load(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, []float64{99}, loaded.Variables[0].Values)
	assert.Equal(t, 8, loaded.Metadata.Step)

	snaps, err := saver.List(ctx, snapshot.Filter{})
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestSQLiteSaver_Errors(t *testing.T) {
	saver := newTestSaver(t)
	ctx := context.Background()

	t.Run("LoadNotFound", func(t *testing.T) {
		_, err := saver.Load(ctx, uuid.NewString())
		assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	})

	t.Run("LoadEmptyID", func(t *testing.T) {
		_, err := saver.Load(ctx, "")
		assert.ErrorIs(t, err, snapshot.ErrInvalidSnapshotID)
	})

	t.Run("SaveNil", func(t *testing.T) {
		err := saver.Save(ctx, nil)
		assert.ErrorIs(t, err, snapshot.ErrInvalidSnapshotID)
	})

	t.Run("SaveInvalid", func(t *testing.T) {
		snap := testSnapshot("precision", "run-1", time.Now())
		snap.RunID = ""
		err := saver.Save(ctx, snap)
		assert.ErrorIs(t, err, snapshot.ErrInvalidRunID)
	})

	t.Run("DeleteNotFound", func(t *testing.T) {
		err := saver.Delete(ctx, uuid.NewString())
		assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	})
}

func TestSQLiteSaver_Delete(t *testing.T) {
	saver := newTestSaver(t)
	ctx := context.Background()

	snap := testSnapshot("recall", "run-1", time.Now().UTC())
	require.NoError(t, saver.Save(ctx, snap))
	require.NoError(t, saver.Delete(ctx, snap.ID))

	_, err := saver.Load(ctx, snap.ID)
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
}

func TestSQLiteSaver_List(t *testing.T) {
	saver := newTestSaver(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	older := testSnapshot("precision", "run-1", base.Add(-2*time.Hour), "epoch-1")
	middle := testSnapshot("precision", "run-2", base.Add(-1*time.Hour), "epoch-2")
	newest := testSnapshot("recall", "run-1", base, "epoch-2", "final")
	for _, snap := range []*snapshot.Snapshot{older, middle, newest} {
		require.NoError(t, saver.Save(ctx, snap))
	}

	t.Run("NewestFirst", func(t *testing.T) {
		snaps, err := saver.List(ctx, snapshot.Filter{})
		require.NoError(t, err)
		require.Len(t, snaps, 3)
		assert.Equal(t, newest.ID, snaps[0].ID)
		assert.Equal(t, older.ID, snaps[2].ID)
	})

	t.Run("ByMetricName", func(t *testing.T) {
		snaps, err := saver.List(ctx, snapshot.Filter{MetricName: "precision"})
		require.NoError(t, err)
		assert.Len(t, snaps, 2)
	})

	t.Run("ByRunID", func(t *testing.T) {
		snaps, err := saver.List(ctx, snapshot.Filter{RunID: "run-1"})
		require.NoError(t, err)
		assert.Len(t, snaps, 2)
	})

	t.Run("ByTimeRange", func(t *testing.T) {
		since := base.Add(-90 * time.Minute)
		before := base
		snaps, err := saver.List(ctx, snapshot.Filter{Since: &since, Before: &before})
		require.NoError(t, err)
		require.Len(t, snaps, 1)
		assert.Equal(t, middle.ID, snaps[0].ID)
	})

	t.Run("ByTags", func(t *testing.T) {
		snaps, err := saver.List(ctx, snapshot.Filter{Tags: []string{"final"}})
		require.NoError(t, err)
		require.Len(t, snaps, 1)
		assert.Equal(t, newest.ID, snaps[0].ID)
	})

	t.Run("Limit", func(t *testing.T) {
		snaps, err := saver.List(ctx, snapshot.Filter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, snaps, 2)
	})

	t.Run("TagsWithLimit", func(t *testing.T) {
		// The only epoch-1 snapshot is the oldest row; the limit must
		// count matching snapshots, not scanned rows
		snaps, err := saver.List(ctx, snapshot.Filter{Tags: []string{"epoch-1"}, Limit: 1})
		require.NoError(t, err)
		require.Len(t, snaps, 1)
		assert.Equal(t, older.ID, snaps[0].ID)
	})

	t.Run("TagsWithOffset", func(t *testing.T) {
		snaps, err := saver.List(ctx, snapshot.Filter{Tags: []string{"epoch-2"}, Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, snaps, 1)
		assert.Equal(t, middle.ID, snaps[0].ID)
	})

	t.Run("OffsetWithoutLimit", func(t *testing.T) {
		snaps, err := saver.List(ctx, snapshot.Filter{Offset: 1})
		require.NoError(t, err)
		require.Len(t, snaps, 2)
		assert.Equal(t, middle.ID, snaps[0].ID)
	})

	t.Run("InvalidFilter", func(t *testing.T) {
		_, err := saver.List(ctx, snapshot.Filter{Offset: -1})
		assert.ErrorIs(t, err, snapshot.ErrInvalidOffset)
	})
}

func TestSQLiteSaver_CustomTableName(t *testing.T) {
	saver := newTestSaver(t, WithTableName("metric_snapshots"))
	ctx := context.Background()

	snap := testSnapshot("mean", "run-1", time.Now().UTC())
	require.NoError(t, saver.Save(ctx, snap))

	loaded, err := saver.Load(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, loaded.ID)
}

func TestIsSafeIdent(t *testing.T) {
	assert.True(t, isSafeIdent("snapshots"))
	assert.True(t, isSafeIdent("metric_snapshots_v2"))
	assert.False(t, isSafeIdent(""))
	assert.False(t, isSafeIdent("2snapshots"))
	assert.False(t, isSafeIdent("snapshots; DROP TABLE"))
}
