// Package memory provides a thread-safe in-memory snapshot store
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/metricflow/metricflow/internal/core/snapshot"
	"github.com/metricflow/metricflow/internal/infrastructure/telemetry"
	"github.com/metricflow/metricflow/pkg/serialization"
)

// InMemorySaver implements snapshot.Saver with in-memory storage. Entries are
// kept as serialized payloads so callers can never mutate stored state, and
// an optional TTL expires stale snapshots lazily on access.
// PRINCIPLES:
// - KISS: A map behind a mutex, nothing more
// - DIP: Implements snapshot.Saver interface
type InMemorySaver struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	serializer *serialization.Serializer
	defaultTTL time.Duration
}

type entry struct {
	payload   []byte
	savedAt   time.Time
	timestamp time.Time
}

// Option configures an InMemorySaver
type Option func(*InMemorySaver)

// WithTTL sets the snapshot retention period; zero keeps snapshots forever
func WithTTL(ttl time.Duration) Option {
	return func(s *InMemorySaver) { s.defaultTTL = ttl }
}

// WithSerializer overrides the payload serializer
func WithSerializer(serializer *serialization.Serializer) Option {
	return func(s *InMemorySaver) { s.serializer = serializer }
}

// NewInMemorySaver creates a new in-memory snapshot saver
func NewInMemorySaver(opts ...Option) *InMemorySaver {
	s := &InMemorySaver{
		entries:    make(map[string]*entry),
		serializer: serialization.DefaultSerializer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a snapshot, replacing any previous entry with the same ID
func (s *InMemorySaver) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if snap == nil {
		return snapshot.ErrInvalidSnapshotID
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	payload, err := s.serializer.Serialize(snap)
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[snap.ID] = &entry{
		payload:   payload,
		savedAt:   time.Now(),
		timestamp: snap.Timestamp,
	}
	telemetry.SnapshotSaved()
	return nil
}

// Load retrieves a snapshot by ID
func (s *InMemorySaver) Load(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	if id == "" {
		return nil, snapshot.ErrInvalidSnapshotID
	}

	s.mu.RLock()
	e, exists := s.entries[id]
	s.mu.RUnlock()

	if !exists || s.expired(e) {
		return nil, snapshot.ErrSnapshotNotFound
	}

	var snap snapshot.Snapshot
	if err := s.serializer.Deserialize(e.payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot: %w", err)
	}
	telemetry.SnapshotLoaded()
	return &snap, nil
}

// List returns snapshots matching the filter, newest first
func (s *InMemorySaver) List(ctx context.Context, filter snapshot.Filter) ([]*snapshot.Snapshot, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	payloads := make([][]byte, 0, len(s.entries))
	for _, e := range s.entries {
		if !s.expired(e) {
			payloads = append(payloads, e.payload)
		}
	}
	s.mu.RUnlock()

	matched := make([]*snapshot.Snapshot, 0, len(payloads))
	for _, payload := range payloads {
		var snap snapshot.Snapshot
		if err := s.serializer.Deserialize(payload, &snap); err != nil {
			return nil, fmt.Errorf("failed to deserialize snapshot: %w", err)
		}
		if filter.Matches(&snap) {
			matched = append(matched, &snap)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	return paginate(matched, filter.Offset, filter.Limit), nil
}

// Delete removes a snapshot by ID
func (s *InMemorySaver) Delete(ctx context.Context, id string) error {
	if id == "" {
		return snapshot.ErrInvalidSnapshotID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; !exists {
		return snapshot.ErrSnapshotNotFound
	}
	delete(s.entries, id)
	telemetry.SnapshotDeleted()
	return nil
}

// Len returns the number of stored snapshots, including expired ones that
// have not been touched yet
func (s *InMemorySaver) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemorySaver) expired(e *entry) bool {
	return s.defaultTTL > 0 && time.Since(e.savedAt) > s.defaultTTL
}

func paginate(snaps []*snapshot.Snapshot, offset, limit int) []*snapshot.Snapshot {
	if offset >= len(snaps) {
		return nil
	}
	snaps = snaps[offset:]
	if limit > 0 && limit < len(snaps) {
		snaps = snaps[:limit]
	}
	return snaps
}
