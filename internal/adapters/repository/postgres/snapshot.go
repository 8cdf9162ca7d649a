// Package postgres provides PostgreSQL-based snapshot persistence
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/metricflow/metricflow/internal/core/snapshot"
	"github.com/metricflow/metricflow/internal/infrastructure/telemetry"
	"github.com/metricflow/metricflow/pkg/serialization"
)

const defaultTableName = "snapshots"

// PostgresSaver implements snapshot.Saver using PostgreSQL storage.
// It mirrors the SQLite schema: variable state as a serialized blob,
// metadata as JSONB, with queryable columns for List filters.
// PRINCIPLES:
// - SRP: Only handles PostgreSQL persistence
// - DIP: Implements snapshot.Saver interface
type PostgresSaver struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
	tableName  string
}

// Option configures a PostgresSaver
type Option func(*PostgresSaver)

// WithTableName overrides the storage table name
func WithTableName(name string) Option {
	return func(s *PostgresSaver) {
		if isSafeIdent(name) {
			s.tableName = name
		}
	}
}

// WithSerializer overrides the state serializer
func WithSerializer(serializer *serialization.Serializer) Option {
	return func(s *PostgresSaver) { s.serializer = serializer }
}

// NewPostgresSaver creates a new PostgreSQL snapshot saver and ensures
// the schema exists
func NewPostgresSaver(ctx context.Context, dsn string, opts ...Option) (*PostgresSaver, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresSaver{
		pool:       pool,
		serializer: serialization.DefaultSerializer(),
		tableName:  defaultTableName,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.createTables(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresSaver) createTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			metric_name TEXT NOT NULL,
			run_id TEXT NOT NULL,
			state BYTEA NOT NULL,
			metadata JSONB NOT NULL,
			timestamp BIGINT NOT NULL,
			version TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_metric_name ON %s(metric_name);
		CREATE INDEX IF NOT EXISTS idx_%s_run_id ON %s(run_id);
		CREATE INDEX IF NOT EXISTS idx_%s_timestamp ON %s(timestamp);
	`, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Save persists a snapshot, replacing any previous row with the same ID
func (s *PostgresSaver) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if snap == nil {
		return snapshot.ErrInvalidSnapshotID
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	state, err := s.serializer.Serialize(snap.Variables)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}
	metadata, err := json.Marshal(snap.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, metric_name, run_id, state, metadata, timestamp, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			metric_name = EXCLUDED.metric_name,
			run_id = EXCLUDED.run_id,
			state = EXCLUDED.state,
			metadata = EXCLUDED.metadata,
			timestamp = EXCLUDED.timestamp,
			version = EXCLUDED.version
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		snap.ID, snap.MetricName, snap.RunID, state, metadata,
		snap.Timestamp.Unix(), snap.Version)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	telemetry.SnapshotSaved()
	return nil
}

// Load retrieves a snapshot by ID
func (s *PostgresSaver) Load(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	if id == "" {
		return nil, snapshot.ErrInvalidSnapshotID
	}

	query := fmt.Sprintf(`
		SELECT id, metric_name, run_id, state, metadata, timestamp, version
		FROM %s WHERE id = $1
	`, s.tableName)

	snap, err := s.scanSnapshot(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}
	telemetry.SnapshotLoaded()
	return snap, nil
}

// List returns snapshots matching the filter, newest first
func (s *PostgresSaver) List(ctx context.Context, filter snapshot.Filter) ([]*snapshot.Snapshot, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query, args := s.buildListQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*snapshot.Snapshot
	for rows.Next() {
		snap, err := s.scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		// Tag constraints live inside the metadata JSON, so they are
		// applied after scanning rather than in SQL
		if len(filter.Tags) > 0 && !filter.Matches(snap) {
			continue
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// When tags filter rows after the scan, limit and offset must be
	// applied here; doing it in SQL would count non-matching rows
	if len(filter.Tags) > 0 {
		snaps = paginate(snaps, filter.Offset, filter.Limit)
	}
	return snaps, nil
}

// Delete removes a snapshot by ID
func (s *PostgresSaver) Delete(ctx context.Context, id string) error {
	if id == "" {
		return snapshot.ErrInvalidSnapshotID
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	result, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if result.RowsAffected() == 0 {
		return snapshot.ErrSnapshotNotFound
	}
	telemetry.SnapshotDeleted()
	return nil
}

// Close releases the connection pool
func (s *PostgresSaver) Close() {
	s.pool.Close()
}

func (s *PostgresSaver) buildListQuery(filter snapshot.Filter) (string, []any) {
	var conditions []string
	var args []any

	addCondition := func(expr string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}

	if filter.MetricName != "" {
		addCondition("metric_name = $%d", filter.MetricName)
	}
	if filter.RunID != "" {
		addCondition("run_id = $%d", filter.RunID)
	}
	if filter.Since != nil {
		addCondition("timestamp >= $%d", filter.Since.Unix())
	}
	if filter.Before != nil {
		addCondition("timestamp < $%d", filter.Before.Unix())
	}

	query := fmt.Sprintf(`
		SELECT id, metric_name, run_id, state, metadata, timestamp, version
		FROM %s
	`, s.tableName)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY timestamp DESC"

	// With tags the final row count is only known after the metadata
	// scan, so pagination moves to List
	if len(filter.Tags) > 0 {
		return query, args
	}

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
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

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresSaver) scanSnapshot(row rowScanner) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	var state []byte
	var metadata []byte
	var ts int64

	err := row.Scan(&snap.ID, &snap.MetricName, &snap.RunID, &state, &metadata, &ts, &snap.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, snapshot.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	if err := s.serializer.Deserialize(state, &snap.Variables); err != nil {
		return nil, fmt.Errorf("failed to deserialize state: %w", err)
	}
	if err := json.Unmarshal(metadata, &snap.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	snap.Timestamp = time.Unix(ts, 0).UTC()
	return &snap, nil
}

func isSafeIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
