/**
 * SQLite Cache Store
 *
 * Persistent cache backend used for the offline data path. Survives process
 * restarts, which is the whole point of the offline strategy.
 *
 * Features:
 * - WAL mode with foreign keys enabled
 * - Connection pool tuning
 * - Schema bootstrap on open
 *
 * Author: Roshni Games Team
 * Created: 2026-08-15
 */

package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
  key       TEXT PRIMARY KEY,
  value     BLOB NOT NULL,
  stored_at TIMESTAMP NOT NULL
);
`

// SQLiteConfig holds SQLite store configuration.
type SQLiteConfig struct {
	Path         string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

// DefaultSQLiteConfig returns default SQLite store configuration.
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path:         "resilience-cache.db",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
		MaxIdleTime:  5 * time.Minute,
	}
}

// SQLite is a sqlite-backed Store.
type SQLite struct {
	db *sqlx.DB
}

// NewSQLite opens (creating if needed) the cache database.
func NewSQLite(cfg SQLiteConfig) (*SQLite, error) {
	db, err := sqlx.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL", cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.MaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Get returns the entry for key.
func (s *SQLite) Get(ctx context.Context, key string) (*Entry, bool, error) {
	var row struct {
		Key      string    `db:"key"`
		Value    []byte    `db:"value"`
		StoredAt time.Time `db:"stored_at"`
	}

	err := s.db.GetContext(ctx, &row,
		"SELECT key, value, stored_at FROM cache_entries WHERE key = ?", key)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	return &Entry{Key: row.Key, Value: row.Value, StoredAt: row.StoredAt}, true, nil
}

// Put stores a value under key, replacing any existing entry.
func (s *SQLite) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, stored_at = excluded.stored_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for key.
func (s *SQLite) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
