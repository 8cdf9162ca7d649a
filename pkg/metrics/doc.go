// Package metrics provides ready-made evaluation metrics built on the shared
// metric base: counters, reductions (sum, mean), and binary classification
// metrics (accuracy, precision, recall, F1). Each metric registers its kind
// so serialized configs can be rebuilt into live instances, and each follows
// the same lifecycle: accumulate batches with UpdateState, read with Result,
// zero with ResetState.
package metrics
