package driven

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by CacheStore.Get when no entry exists for the key.
var ErrCacheMiss = errors.New("cache miss")

// CacheStore defines the driven port for opaque JSON blob storage keyed by
// string. Freshness is decided by the caller from the returned storedAt.
type CacheStore interface {
	Get(ctx context.Context, key string) (value []byte, storedAt time.Time, err error)
	Set(ctx context.Context, key string, value []byte, storedAt time.Time) error
	Delete(ctx context.Context, key string) error
	// Purge removes every entry whose key starts with prefix and returns how
	// many were removed. An empty prefix clears the store.
	Purge(ctx context.Context, prefix string) (int, error)
}
