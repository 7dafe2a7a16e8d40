package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CacheStore = (*CacheRepo)(nil)

// CacheRepo is the SQLite implementation of the CacheStore port interface.
type CacheRepo struct {
	db *DB
}

// NewCacheRepo creates a new CacheRepo.
func NewCacheRepo(db *DB) *CacheRepo {
	return &CacheRepo{db: db}
}

// Get returns the stored value and its write time, or driven.ErrCacheMiss.
func (r *CacheRepo) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	const query = `SELECT value, stored_at FROM cache_entries WHERE key = ?`

	var value []byte
	var storedAt string
	err := r.db.Reader.QueryRowContext(ctx, query, key).Scan(&value, &storedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, driven.ErrCacheMiss
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get cache entry %q: %w", key, err)
	}

	t, err := parseTime(storedAt)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse stored_at for cache entry %q: %w", key, err)
	}
	return value, t, nil
}

// Set stores or replaces the entry for key.
func (r *CacheRepo) Set(ctx context.Context, key string, value []byte, storedAt time.Time) error {
	const query = `
		INSERT INTO cache_entries (key, value, stored_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, stored_at = excluded.stored_at`

	if _, err := r.db.Writer.ExecContext(ctx, query, key, value, formatTime(storedAt)); err != nil {
		return fmt.Errorf("set cache entry %q: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key. Deleting a missing key is not an error.
func (r *CacheRepo) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM cache_entries WHERE key = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete cache entry %q: %w", key, err)
	}
	return nil
}

// Purge removes every entry whose key starts with prefix. The comparison is
// on the raw prefix, so keys containing LIKE wildcards are handled exactly.
func (r *CacheRepo) Purge(ctx context.Context, prefix string) (int, error) {
	const query = `DELETE FROM cache_entries WHERE substr(key, 1, ?) = ?`

	res, err := r.db.Writer.ExecContext(ctx, query, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return 0, fmt.Errorf("purge cache prefix %q: %w", prefix, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge cache prefix %q: rows affected: %w", prefix, err)
	}
	return int(n), nil
}
