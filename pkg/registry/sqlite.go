package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// schema is the provider configuration table.
const schema = `
CREATE TABLE IF NOT EXISTS llm_providers (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	provider          TEXT NOT NULL,
	model             TEXT NOT NULL,
	api_key_encrypted TEXT NOT NULL DEFAULT '',
	account_id        TEXT,
	is_default        INTEGER NOT NULL DEFAULT 0,
	use_case          TEXT NOT NULL DEFAULT '[]',
	max_tokens        INTEGER NOT NULL DEFAULT 0,
	is_active         INTEGER NOT NULL DEFAULT 1,
	created_at        TIMESTAMP NOT NULL,
	updated_at        TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_llm_providers_account
	ON llm_providers(account_id, is_active);
`

// SQLiteStoreConfig configures the SQLite provider store.
type SQLiteStoreConfig struct {
	// Path is the database file path. Use ":memory:" for tests.
	Path string

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// SQLiteStore implements Store on SQLite with WAL journaling.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the provider configuration database.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open provider store %q: %w", cfg.Path, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", cfg.BusyTimeout.Milliseconds())); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create provider schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: slog.Default().With("component", "registry.sqlite"),
	}, nil
}

// ListActive returns active configurations visible to accountID.
func (s *SQLiteStore) ListActive(ctx context.Context, accountID string) ([]ProviderConfig, error) {
	query := `SELECT id, name, provider, model, api_key_encrypted, account_id,
		is_default, use_case, max_tokens, is_active, created_at, updated_at
		FROM llm_providers WHERE is_active = 1 AND `

	var args []any
	if accountID != "" {
		query += "(account_id IS NULL OR account_id = ?)"
		args = append(args, accountID)
	} else {
		query += "account_id IS NULL"
	}
	query += " ORDER BY name"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query providers: %w", err)
	}
	defer rows.Close()

	var configs []ProviderConfig
	for rows.Next() {
		cfg, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}

// Create inserts a configuration.
func (s *SQLiteStore) Create(ctx context.Context, cfg ProviderConfig) error {
	useCases, err := json.Marshal(cfg.UseCases)
	if err != nil {
		return fmt.Errorf("failed to encode use cases: %w", err)
	}

	now := time.Now().UTC()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO llm_providers
		(id, name, provider, model, api_key_encrypted, account_id,
		 is_default, use_case, max_tokens, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cfg.ID, cfg.Name, cfg.Provider, cfg.Model, cfg.APIKeyEncrypted,
		nullableAccount(cfg.AccountID), boolToInt(cfg.IsDefault), string(useCases),
		cfg.MaxTokens, boolToInt(cfg.IsActive), cfg.CreatedAt, now)
	if err != nil {
		return fmt.Errorf("failed to insert provider %q: %w", cfg.Name, err)
	}

	return nil
}

// Update replaces the configuration with cfg.ID.
func (s *SQLiteStore) Update(ctx context.Context, cfg ProviderConfig) error {
	useCases, err := json.Marshal(cfg.UseCases)
	if err != nil {
		return fmt.Errorf("failed to encode use cases: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `UPDATE llm_providers SET
		name = ?, provider = ?, model = ?, api_key_encrypted = ?, account_id = ?,
		is_default = ?, use_case = ?, max_tokens = ?, is_active = ?, updated_at = ?
		WHERE id = ?`,
		cfg.Name, cfg.Provider, cfg.Model, cfg.APIKeyEncrypted,
		nullableAccount(cfg.AccountID), boolToInt(cfg.IsDefault), string(useCases),
		cfg.MaxTokens, boolToInt(cfg.IsActive), time.Now().UTC(), cfg.ID)
	if err != nil {
		return fmt.Errorf("failed to update provider %q: %w", cfg.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("provider %q not found", cfg.ID)
	}

	return nil
}

// Delete removes the configuration by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM llm_providers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete provider %q: %w", id, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanProvider decodes one row into a ProviderConfig.
func scanProvider(rows *sql.Rows) (ProviderConfig, error) {
	var cfg ProviderConfig
	var accountID sql.NullString
	var isDefault, isActive int
	var useCases string

	err := rows.Scan(&cfg.ID, &cfg.Name, &cfg.Provider, &cfg.Model,
		&cfg.APIKeyEncrypted, &accountID, &isDefault, &useCases,
		&cfg.MaxTokens, &isActive, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return cfg, fmt.Errorf("failed to scan provider row: %w", err)
	}

	cfg.AccountID = accountID.String
	cfg.IsDefault = isDefault != 0
	cfg.IsActive = isActive != 0

	if err := json.Unmarshal([]byte(useCases), &cfg.UseCases); err != nil {
		return cfg, fmt.Errorf("failed to decode use cases for %q: %w", cfg.ID, err)
	}

	return cfg, nil
}

func nullableAccount(accountID string) any {
	if accountID == "" {
		return nil
	}
	return accountID
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
