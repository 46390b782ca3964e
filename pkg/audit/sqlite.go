package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// auditSchema is the audit trail table read by the administrative
// surface.
const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	account_id  TEXT NOT NULL,
	action      TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	new_values  TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_account_time
	ON audit_log(account_id, created_at);
CREATE INDEX IF NOT EXISTS idx_audit_log_created
	ON audit_log(created_at);
`

// SQLiteSinkConfig configures the SQLite audit sink.
type SQLiteSinkConfig struct {
	// Path is the database file path. Use ":memory:" for tests.
	Path string

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// SQLiteSink persists audit record batches to SQLite, one transaction
// per batch.
type SQLiteSink struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteSink opens (or creates) the audit database.
func NewSQLiteSink(cfg SQLiteSinkConfig) (*SQLiteSink, error) {
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit sink %q: %w", cfg.Path, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", cfg.BusyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(auditSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	return &SQLiteSink{
		db:     db,
		logger: slog.Default().With("component", "audit.sqlite"),
	}, nil
}

// WriteBatch inserts records in a single transaction. On error nothing
// is persisted, so the queue can safely retry the whole batch.
func (s *SQLiteSink) WriteBatch(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO audit_log
		(account_id, action, entity_type, entity_id, new_values, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare audit insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		values, err := json.Marshal(record.NewValues)
		if err != nil {
			return fmt.Errorf("failed to encode audit values: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			record.AccountID, record.Action, record.EntityType,
			record.EntityID, string(values), record.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert audit record: %w", err)
		}
	}

	return tx.Commit()
}

// Count returns the total number of persisted audit records.
func (s *SQLiteSink) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log").Scan(&count)
	return count, err
}

// DeleteOlderThan removes records created before cutoff and returns
// the number deleted. Used by the retention pruner.
func (s *SQLiteSink) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_log WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit records: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
