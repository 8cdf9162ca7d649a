// Package sqlite provides SQLite-based snapshot persistence
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/metricflow/metricflow/internal/core/snapshot"
	"github.com/metricflow/metricflow/internal/infrastructure/telemetry"
	"github.com/metricflow/metricflow/pkg/serialization"
)

const defaultTableName = "snapshots"

// SQLiteSaver implements snapshot.Saver using SQLite storage.
// Variable state travels as a serialized blob; metadata is stored as JSON
// alongside the queryable columns so List can filter in SQL.
// PRINCIPLES:
// - SRP: Only handles SQLite persistence
// - DIP: Implements snapshot.Saver interface
type SQLiteSaver struct {
	db         *sql.DB
	serializer *serialization.Serializer
	tableName  string
}

// Option configures a SQLiteSaver
type Option func(*SQLiteSaver)

// WithTableName overrides the storage table name
func WithTableName(name string) Option {
	return func(s *SQLiteSaver) {
		if isSafeIdent(name) {
			s.tableName = name
		}
	}
}

// WithSerializer overrides the state serializer
func WithSerializer(serializer *serialization.Serializer) Option {
	return func(s *SQLiteSaver) { s.serializer = serializer }
}

// NewSQLiteSaver creates a new SQLite snapshot saver and ensures the
// schema exists
func NewSQLiteSaver(dsn string, opts ...Option) (*SQLiteSaver, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLiteSaver{
		db:         db,
		serializer: serialization.DefaultSerializer(),
		tableName:  defaultTableName,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSaver) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			metric_name TEXT NOT NULL,
			run_id TEXT NOT NULL,
			state BLOB NOT NULL,
			metadata TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			version TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_%s_metric_name ON %s(metric_name);
		CREATE INDEX IF NOT EXISTS idx_%s_run_id ON %s(run_id);
		CREATE INDEX IF NOT EXISTS idx_%s_timestamp ON %s(timestamp);
	`, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Save persists a snapshot, replacing any previous row with the same ID
func (s *SQLiteSaver) Save(ctx context.Context, snap *snapshot.Snapshot) error {
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
		INSERT OR REPLACE INTO %s (id, metric_name, run_id, state, metadata, timestamp, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		snap.ID, snap.MetricName, snap.RunID, state, string(metadata),
		snap.Timestamp.Unix(), snap.Version)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	telemetry.SnapshotSaved()
	return nil
}

// Load retrieves a snapshot by ID
func (s *SQLiteSaver) Load(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	if id == "" {
		return nil, snapshot.ErrInvalidSnapshotID
	}

	query := fmt.Sprintf(`
		SELECT id, metric_name, run_id, state, metadata, timestamp, version
		FROM %s WHERE id = ?
	`, s.tableName)

	snap, err := s.scanSnapshot(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	telemetry.SnapshotLoaded()
	return snap, nil
}

// List returns snapshots matching the filter, newest first
func (s *SQLiteSaver) List(ctx context.Context, filter snapshot.Filter) ([]*snapshot.Snapshot, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query, args := s.buildListQuery(filter)
	rows, err := s.db.QueryContext(ctx, query, args...)
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
func (s *SQLiteSaver) Delete(ctx context.Context, id string) error {
	if id == "" {
		return snapshot.ErrInvalidSnapshotID
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return snapshot.ErrSnapshotNotFound
	}
	telemetry.SnapshotDeleted()
	return nil
}

// Close releases the database connection
func (s *SQLiteSaver) Close() error {
	return s.db.Close()
}

func (s *SQLiteSaver) buildListQuery(filter snapshot.Filter) (string, []any) {
	var conditions []string
	var args []any

	if filter.MetricName != "" {
		conditions = append(conditions, "metric_name = ?")
		args = append(args, filter.MetricName)
	}
	if filter.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, filter.RunID)
	}
	if filter.Since != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.Since.Unix())
	}
	if filter.Before != nil {
		conditions = append(conditions, "timestamp < ?")
		args = append(args, filter.Before.Unix())
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

	// SQLite requires a LIMIT clause before OFFSET; -1 means unlimited
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit == 0 {
			limit = -1
		}
		query += " LIMIT ?"
		args = append(args, limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
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

func (s *SQLiteSaver) scanSnapshot(row rowScanner) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	var state []byte
	var metadata string
	var ts int64

	err := row.Scan(&snap.ID, &snap.MetricName, &snap.RunID, &state, &metadata, &ts, &snap.Version)
	if err == sql.ErrNoRows {
		return nil, snapshot.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	if err := s.serializer.Deserialize(state, &snap.Variables); err != nil {
		return nil, fmt.Errorf("failed to deserialize state: %w", err)
	}
	if err := json.Unmarshal([]byte(metadata), &snap.Metadata); err != nil {
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
