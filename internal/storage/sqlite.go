// Package storage implements the persistent prediction cache on SQLite.
// Predicted queries survive across runs so that repeated reconciliations of
// the same assortment do not re-spend model quota. Reconciliation results
// themselves are never persisted.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shelfsync/shelfsync/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteCache implements service.PredictionCache using SQLite.
type SQLiteCache struct {
	db     *sql.DB
	dbPath string
	ttl    time.Duration
}

// NewSQLiteCache creates a new SQLite-backed prediction cache.
func NewSQLiteCache(dbPath string, ttl time.Duration) (*SQLiteCache, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	// Ensure directory exists
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	cache := &SQLiteCache{
		db:     db,
		dbPath: dbPath,
		ttl:    ttl,
	}

	if err := cache.migrate(); err != nil {
		return nil, err
	}

	return cache, nil
}

func (c *SQLiteCache) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS predictions (
			item_hash  TEXT PRIMARY KEY,
			queries    TEXT NOT NULL,
			expires_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create predictions table: %w", err)
	}
	return nil
}

// Get retrieves cached predictions for an item hash. Expired entries are
// deleted on the way out.
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]model.PredictedQuery, bool, error) {
	var raw string
	var expiresAt time.Time

	err := c.db.QueryRowContext(ctx,
		`SELECT queries, expires_at FROM predictions WHERE item_hash = ?`, key,
	).Scan(&raw, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read prediction cache: %w", err)
	}

	if time.Now().After(expiresAt) {
		if _, delErr := c.db.ExecContext(ctx, `DELETE FROM predictions WHERE item_hash = ?`, key); delErr != nil {
			return nil, false, fmt.Errorf("failed to evict expired prediction: %w", delErr)
		}
		return nil, false, nil
	}

	var queries []model.PredictedQuery
	if err := json.Unmarshal([]byte(raw), &queries); err != nil {
		// A corrupt row is treated as a miss; the predictor will overwrite it
		return nil, false, nil
	}

	return queries, true, nil
}

// Set stores predictions for an item hash, replacing any previous entry.
func (c *SQLiteCache) Set(ctx context.Context, key string, queries []model.PredictedQuery) error {
	raw, err := json.Marshal(queries)
	if err != nil {
		return fmt.Errorf("failed to encode predictions: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT INTO predictions (item_hash, queries, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(item_hash) DO UPDATE SET queries = excluded.queries, expires_at = excluded.expires_at`,
		key, string(raw), time.Now().Add(c.ttl))
	if err != nil {
		return fmt.Errorf("failed to write prediction cache: %w", err)
	}

	return nil
}

// Prune removes all expired entries.
func (c *SQLiteCache) Prune(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM predictions WHERE expires_at < ?`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to prune prediction cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Close closes the database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
