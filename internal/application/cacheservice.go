package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// DefaultCacheTTL is how long media entries stay fresh.
const DefaultCacheTTL = 24 * time.Hour

// Cache keys. Every key the site writes is built here.
const (
	MediaKeyPrefix      = "media:"
	MediaItemsKey       = "media:items"
	LatestEpisodesKey   = "media:episodes:latest"
	EpisodesByTagPrefix = "media:episodes:tag:"
)

// EpisodesKey returns the cache key for the episodes of one show tag.
func EpisodesKey(tagID int64) string {
	return EpisodesByTagPrefix + strconv.FormatInt(tagID, 10)
}

// Cache stores JSON values in a driven.CacheStore and decides freshness from
// the write time and a TTL, using an injected clock. Values carry no schema
// version; an entry that no longer decodes is treated as a miss.
type Cache struct {
	store  driven.CacheStore
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewCache creates a Cache. ttl <= 0 uses DefaultCacheTTL; now may be nil to
// use time.Now.
func NewCache(store driven.CacheStore, ttl time.Duration, now func() time.Time, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, ttl: ttl, now: now, logger: logger}
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Load decodes the entry for key into dst and reports whether a fresh entry
// was found. Missing, expired and undecodable entries all report false with
// a nil error; only store failures are returned.
func (c *Cache) Load(ctx context.Context, key string, dst any) (bool, error) {
	raw, storedAt, err := c.store.Get(ctx, key)
	if errors.Is(err, driven.ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache entry %q: %w", key, err)
	}

	if c.now().Sub(storedAt) > c.ttl {
		return false, nil
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// Store encodes v and writes it under key, stamped with the current time.
func (c *Cache) Store(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache entry %q: %w", key, err)
	}
	if err := c.store.Set(ctx, key, raw, c.now().UTC()); err != nil {
		return fmt.Errorf("writing cache entry %q: %w", key, err)
	}
	return nil
}

// Invalidate removes the entry for key.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if err := c.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting cache entry %q: %w", key, err)
	}
	return nil
}

// Purge removes every entry whose key starts with prefix.
func (c *Cache) Purge(ctx context.Context, prefix string) (int, error) {
	n, err := c.store.Purge(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("purging cache prefix %q: %w", prefix, err)
	}
	return n, nil
}

// Cached returns the fresh cached value for key, or calls fetch and caches its
// result. Cache read and write failures are logged and never fail the call;
// fetch errors are returned and nothing is cached.
func Cached[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	var cached T
	hit, err := c.Load(ctx, key, &cached)
	if err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}
	if hit {
		return cached, nil
	}

	fresh, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := c.Store(ctx, key, fresh); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
	return fresh, nil
}
