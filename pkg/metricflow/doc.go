// Package metricflow provides a minimal public façade for building and
// evaluating metrics without importing internal packages. It re-exports the
// core metric types for convenience and exposes a Session with simple
// methods to feed batches and read results.
package metricflow
