// Package toggles holds the persistent key-value store behind the five
// filter toggles and the loader that reads them at session start.
package toggles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/leanbrew/dbopen"
)

// Store is an async key-value store. Get returns nil for a missing key.
type Store interface {
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any) error
}

// Schema is the SQLite table backing SQLiteStore.
const Schema = `
CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// SQLiteStore persists values as JSON text, one row per key.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps db. The settings table must exist (see Schema).
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenSQLite opens or creates the store file at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("toggles: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Get(ctx context.Context, key string) (any, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("toggles: get %s: %w", key, err)
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		// Written by something other than Set: treat as absent.
		slog.Debug("toggles: stored value is not JSON", "key", key, "error", err)
		return nil, nil
	}
	return v, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("toggles: encode %s: %w", key, err)
	}
	_, err = dbopen.Exec(ctx, s.db,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("toggles: set %s: %w", key, err)
	}
	return nil
}

// MemoryStore is a map-backed Store.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]any
}

// NewMemoryStore returns a store pre-populated with initial.
func NewMemoryStore(initial map[string]any) *MemoryStore {
	m := make(map[string]any, len(initial))
	for k, v := range initial {
		m[k] = v
	}
	return &MemoryStore{m: m}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m[key], nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
	return nil
}
