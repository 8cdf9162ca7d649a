package telemetry

import (
	"expvar"
)

// Metric lifecycle counters using expvar maps keyed by metric kind.
var (
	metricUpdates = expvar.NewMap("metricflow_updates_total")
	metricResets  = expvar.NewMap("metricflow_resets_total")
	metricResults = expvar.NewMap("metricflow_results_total")
)

// Snapshot persistence counters.
var (
	snapshotSaves   = new(expvar.Int)
	snapshotLoads   = new(expvar.Int)
	snapshotDeletes = new(expvar.Int)
	sessionBatches  = new(expvar.Int)
)

func init() {
	expvar.Publish("metricflow_snapshot_saves_total", snapshotSaves)
	expvar.Publish("metricflow_snapshot_loads_total", snapshotLoads)
	expvar.Publish("metricflow_snapshot_deletes_total", snapshotDeletes)
	expvar.Publish("metricflow_session_batches_total", sessionBatches)
}

// Metric lifecycle helpers
func MetricUpdated(kind string)  { metricUpdates.Add(kind, 1) }
func MetricReset(kind string)    { metricResets.Add(kind, 1) }
func MetricResulted(kind string) { metricResults.Add(kind, 1) }

// Persistence/session helpers
func SnapshotSaved()   { snapshotSaves.Add(1) }
func SnapshotLoaded()  { snapshotLoads.Add(1) }
func SnapshotDeleted() { snapshotDeletes.Add(1) }
func SessionBatch()    { sessionBatches.Add(1) }
