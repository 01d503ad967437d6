// Package flowstore persists short-lived per-conversation flow records.
//
// The store is a best-effort TTL cache, not a durable ledger: reads that
// fail for any reason report absence, writes and deletes swallow their
// errors, and a nil *Store degrades every operation to a no-op so the
// dispatcher stays correct (if more conservative) with no storage
// attached.
package flowstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mamamansion/line-edge-go/internal/logger"
	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// Record is one in-progress flow for a conversation. Fields are
// flow-specific; unused ones stay zero.
type Record struct {
	Step    string `json:"step,omitempty"`
	Room    string `json:"room,omitempty"`
	DateISO string `json:"dateISO,omitempty"`
	Phone   string `json:"phone,omitempty"`
	TS      int64  `json:"ts,omitempty"` // unix milliseconds when the flow started
}

// MetricsRecorder defines the interface for recording flow store operations
type MetricsRecorder interface {
	RecordFlowStoreOp(op, status string)
}

// Store wraps the SQLite-backed flow cache.
type Store struct {
	conn    *sql.DB
	path    string
	ttl     time.Duration
	log     *logger.Logger
	metrics MetricsRecorder
}

const schema = `
CREATE TABLE IF NOT EXISTS flows (
	key        TEXT PRIMARY KEY,
	record     TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_flows_expires_at ON flows(expires_at);
`

// New opens (or creates) the flow store database and initializes the
// schema. ttl is the fixed expiry applied to every Put.
func New(dbPath string, ttl time.Duration, log *logger.Logger) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create flow store directory: %w", err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open flow store: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	// WAL keeps concurrent webhook requests from blocking each other.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping flow store: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize flow store schema: %w", err)
	}

	return &Store{
		conn: conn,
		path: dbPath,
		ttl:  ttl,
		log:  log,
	}, nil
}

// SetMetrics sets the metrics recorder for flow store operations
func (s *Store) SetMetrics(recorder MetricsRecorder) {
	if s != nil {
		s.metrics = recorder
	}
}

// Close closes the database connection
func (s *Store) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Ready verifies the backing database is reachable.
func (s *Store) Ready(ctx context.Context) error {
	if s == nil || s.conn == nil {
		return fmt.Errorf("flow store not configured")
	}
	return s.conn.PingContext(ctx)
}

// Get returns the record for key and whether it was found. Expired
// entries, read errors, and corrupted records all report absence.
func (s *Store) Get(ctx context.Context, key string) (Record, bool) {
	if s == nil || s.conn == nil {
		return Record{}, false
	}

	var raw string
	err := s.conn.QueryRowContext(ctx,
		`SELECT record FROM flows WHERE key = ? AND expires_at > ?`,
		key, time.Now().Unix(),
	).Scan(&raw)
	if err != nil {
		if err != sql.ErrNoRows {
			s.log.WithError(err).WithField("key", key).Warn("Flow store read failed")
			s.record("get", "error")
			return Record{}, false
		}
		s.record("get", "miss")
		return Record{}, false
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Flow record corrupted")
		s.record("get", "error")
		return Record{}, false
	}

	s.record("get", "hit")
	return rec, true
}

// Put stores rec under key with the configured TTL. Failures are logged
// and swallowed.
func (s *Store) Put(ctx context.Context, key string, rec Record) {
	if s == nil || s.conn == nil {
		return
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Flow record marshal failed")
		s.record("put", "error")
		return
	}

	expiresAt := time.Now().Add(s.ttl).Unix()
	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO flows (key, record, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET record = excluded.record, expires_at = excluded.expires_at`,
		key, string(raw), expiresAt,
	)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Flow store write failed")
		s.record("put", "error")
		return
	}
	s.record("put", "ok")
}

// Delete removes the record for key. Best-effort, swallows failures.
func (s *Store) Delete(ctx context.Context, key string) {
	if s == nil || s.conn == nil {
		return
	}

	if _, err := s.conn.ExecContext(ctx, `DELETE FROM flows WHERE key = ?`, key); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Flow store delete failed")
		s.record("delete", "error")
		return
	}
	s.record("delete", "ok")
}

// CleanupExpired removes expired rows and returns how many were deleted.
// Called periodically from the server's background job.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	if s == nil || s.conn == nil {
		return 0, nil
	}

	res, err := s.conn.ExecContext(ctx, `DELETE FROM flows WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to clean up expired flows: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) record(op, status string) {
	if s.metrics != nil {
		s.metrics.RecordFlowStoreOp(op, status)
	}
}
