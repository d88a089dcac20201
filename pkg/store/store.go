// Package store keeps delivered bulletins in SQLite. The history is write-only for handlers
// and read by the status server.
package store

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/umputun/quakewatch/pkg/domain"
)

//go:embed schema.sql
var schemaFS embed.FS

// Config represents database configuration
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Store is the bulletin history
type Store struct {
	db *sqlx.DB
}

// DSN makes connection string for a database file
func DSN(path string) string {
	return "file:" + path + "?cache=shared&mode=rwc&_txlock=immediate"
}

// New opens the database and creates schema if needed
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		cfg.DSN = DSN("quakewatch.db")
	}

	db, err := sqlx.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 5000", // 5 second timeout for locks
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveRecord inserts a delivered bulletin. A record with the same entry id is kept as is.
// Lock errors are retried with backoff.
func (s *Store) SaveRecord(ctx context.Context, rec domain.Record) error {
	// times are kept in UTC so text ordering in sqlite matches time ordering
	rec.ReportTime = rec.ReportTime.UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	query := `
		INSERT INTO bulletins (
			entry_id, event_id, kind, title, link, report_time, text, escalated, created_at
		) VALUES (
			:entry_id, :event_id, :kind, :title, :link, :report_time, :text, :escalated, :created_at
		)
		ON CONFLICT(entry_id) DO NOTHING
	`

	var permErr error
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	err := retrier.Do(ctx, func() error {
		if _, err := s.db.NamedExecContext(ctx, query, rec); err != nil {
			if isLockError(err) {
				return err // retry
			}
			permErr = err
		}
		return nil
	})
	if permErr != nil {
		return fmt.Errorf("save bulletin %s: %w", rec.EntryID, permErr)
	}
	if err != nil {
		return fmt.Errorf("save bulletin %s: %w", rec.EntryID, err)
	}
	return nil
}

// Recent returns up to limit bulletins, newest report first
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var recs []domain.Record
	query := `SELECT * FROM bulletins ORDER BY report_time DESC, created_at DESC LIMIT ?`
	if err := s.db.SelectContext(ctx, &recs, query, limit); err != nil {
		return nil, fmt.Errorf("get recent bulletins: %w", err)
	}
	return recs, nil
}

// ByEvent returns all bulletins of an earthquake event in report order
func (s *Store) ByEvent(ctx context.Context, eventID string) ([]domain.Record, error) {
	var recs []domain.Record
	query := `SELECT * FROM bulletins WHERE event_id = ? ORDER BY report_time, created_at`
	if err := s.db.SelectContext(ctx, &recs, query, eventID); err != nil {
		return nil, fmt.Errorf("get bulletins of event %s: %w", eventID, err)
	}
	return recs, nil
}

// Count returns number of stored bulletins
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM bulletins"); err != nil {
		return 0, fmt.Errorf("count bulletins: %w", err)
	}
	return n, nil
}

func initSchema(ctx context.Context, db *sqlx.DB) error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// isLockError checks if an error is a SQLite lock/busy error
func isLockError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "SQLITE_BUSY") ||
		strings.Contains(errStr, "database is locked") ||
		strings.Contains(errStr, "database table is locked")
}
