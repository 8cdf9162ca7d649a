// Package snapshot defines domain-specific errors
package snapshot

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	// Snapshot errors
	ErrInvalidSnapshotID = errors.New("invalid snapshot ID")
	ErrInvalidMetricName = errors.New("invalid metric name")
	ErrInvalidRunID      = errors.New("invalid run ID")
	ErrEmptyState        = errors.New("snapshot has no variable state")
	ErrStateMismatch     = errors.New("snapshot state does not match metric variables")
	ErrSnapshotNotFound  = errors.New("snapshot not found")

	// Filter errors
	ErrInvalidLimit     = errors.New("limit must be non-negative")
	ErrInvalidOffset    = errors.New("offset must be non-negative")
	ErrInvalidTimeRange = errors.New("since must not be after before")
)
