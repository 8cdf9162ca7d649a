// Package telemetry exposes expvar-published counters for the MetricFlow
// runtime (metric updates, resets, results, and snapshot persistence). It
// intentionally avoids external dependencies and can be scraped through the
// standard /debug/vars endpoint by any embedding application.
package telemetry
