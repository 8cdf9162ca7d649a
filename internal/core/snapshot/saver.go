// Package snapshot provides snapshot persistence interfaces
package snapshot

import (
	"context"
	"time"
)

// Saver interface for snapshot persistence (DIP - Dependency Inversion)
// PRINCIPLES:
// - ISP: Interface segregation with ≤5 methods
// - DIP: Core domain depends on interface, not implementations
// - SRP: Single responsibility - snapshot persistence
type Saver interface {
	// Save persists a snapshot
	Save(ctx context.Context, snap *Snapshot) error

	// Load retrieves a snapshot by ID
	Load(ctx context.Context, id string) (*Snapshot, error)

	// List returns snapshots matching the filter, newest first
	List(ctx context.Context, filter Filter) ([]*Snapshot, error)

	// Delete removes a snapshot by ID
	Delete(ctx context.Context, id string) error
}

// Filter for snapshot queries (ISP - segregated interface)
type Filter struct {
	MetricName string     `json:"metric_name,omitempty"`
	RunID      string     `json:"run_id,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
	Since      *time.Time `json:"since,omitempty"`
	Before     *time.Time `json:"before,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
}

// Validate ensures filter parameters are valid
func (f *Filter) Validate() error {
	if f.Limit < 0 {
		return ErrInvalidLimit
	}
	if f.Offset < 0 {
		return ErrInvalidOffset
	}
	if f.Since != nil && f.Before != nil && f.Since.After(*f.Before) {
		return ErrInvalidTimeRange
	}
	return nil
}

// Matches reports whether a snapshot satisfies the filter's field and time
// constraints (limit/offset are applied by the saver)
func (f *Filter) Matches(s *Snapshot) bool {
	if f.MetricName != "" && s.MetricName != f.MetricName {
		return false
	}
	if f.RunID != "" && s.RunID != f.RunID {
		return false
	}
	if f.Since != nil && s.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Before != nil && !s.Timestamp.Before(*f.Before) {
		return false
	}
	for _, tag := range f.Tags {
		if !containsTag(s.Metadata.Tags, tag) {
			return false
		}
	}
	return true
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
