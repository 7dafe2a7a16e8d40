// Package redis implements the CacheStore port on Redis, for deployments
// that run more than one site instance against a shared cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CacheStore = (*CacheStore)(nil)

// DefaultNamespace prefixes every key the store writes.
const DefaultNamespace = "authorsite:"

const (
	fieldValue    = "value"
	fieldStoredAt = "stored_at"
	scanBatch     = 100
)

// CacheStore keeps each entry in a hash holding the value and its write
// time. Entries also get a Redis expiry of maxAge so abandoned keys are
// reclaimed; freshness is still decided by the caller from stored_at.
type CacheStore struct {
	client    goredis.UniversalClient
	namespace string
	maxAge    time.Duration
}

// NewCacheStore wraps client. maxAge <= 0 disables the Redis-side expiry.
func NewCacheStore(client goredis.UniversalClient, namespace string, maxAge time.Duration) *CacheStore {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &CacheStore{client: client, namespace: namespace, maxAge: maxAge}
}

// Dial parses a redis:// URL, connects and pings the server.
func Dial(ctx context.Context, rawURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = 10

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (s *CacheStore) key(k string) string {
	return s.namespace + k
}

// Get returns the stored value and its write time, or driven.ErrCacheMiss.
func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	fields, err := s.client.HGetAll(ctx, s.key(key)).Result()
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("get cache entry %q: %w", key, err)
	}
	value, ok := fields[fieldValue]
	if !ok {
		return nil, time.Time{}, driven.ErrCacheMiss
	}

	storedAt, err := time.Parse(time.RFC3339Nano, fields[fieldStoredAt])
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse stored_at for cache entry %q: %w", key, err)
	}
	return []byte(value), storedAt, nil
}

// Set stores or replaces the entry for key.
func (s *CacheStore) Set(ctx context.Context, key string, value []byte, storedAt time.Time) error {
	k := s.key(key)

	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, k, fieldValue, value, fieldStoredAt, storedAt.UTC().Format(time.RFC3339Nano))
		if s.maxAge > 0 {
			pipe.Expire(ctx, k, s.maxAge)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set cache entry %q: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key.
func (s *CacheStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("delete cache entry %q: %w", key, err)
	}
	return nil
}

// Purge removes every entry whose key starts with prefix. Keys are found
// with SCAN, so the purge does not block the server on large keyspaces.
func (s *CacheStore) Purge(ctx context.Context, prefix string) (int, error) {
	pattern := escapeGlob(s.key(prefix)) + "*"

	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("scan cache prefix %q: %w", prefix, err)
		}
		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil && !errors.Is(err, goredis.Nil) {
				return removed, fmt.Errorf("purge cache prefix %q: %w", prefix, err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

// escapeGlob escapes the characters SCAN MATCH treats as pattern syntax.
func escapeGlob(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\', '^', '-':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
