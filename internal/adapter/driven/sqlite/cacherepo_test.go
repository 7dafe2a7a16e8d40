package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

func TestCacheRepo_SetAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCacheRepo(db)
	ctx := context.Background()
	storedAt := time.Date(2025, 6, 15, 12, 30, 0, 123, time.UTC)

	require.NoError(t, repo.Set(ctx, "media:items", []byte(`[{"title":"x"}]`), storedAt))

	value, got, err := repo.Get(ctx, "media:items")
	require.NoError(t, err)
	assert.Equal(t, `[{"title":"x"}]`, string(value))
	assert.True(t, storedAt.Equal(got))
}

func TestCacheRepo_GetMissing(t *testing.T) {
	repo := NewCacheRepo(setupTestDB(t))

	_, _, err := repo.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, driven.ErrCacheMiss)
}

func TestCacheRepo_SetOverwrites(t *testing.T) {
	repo := NewCacheRepo(setupTestDB(t))
	ctx := context.Background()
	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, repo.Set(ctx, "k", []byte("old"), first))
	require.NoError(t, repo.Set(ctx, "k", []byte("new"), second))

	value, storedAt, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", string(value))
	assert.True(t, second.Equal(storedAt))
}

func TestCacheRepo_DeleteAndPurge(t *testing.T) {
	repo := NewCacheRepo(setupTestDB(t))
	ctx := context.Background()
	now := time.Now()

	for _, key := range []string{"media:items", "media:episodes:tag:1", "media:episodes:tag:2", "media_other", "other"} {
		require.NoError(t, repo.Set(ctx, key, []byte("v"), now))
	}

	require.NoError(t, repo.Delete(ctx, "other"))
	require.NoError(t, repo.Delete(ctx, "never-existed"))

	n, err := repo.Purge(ctx, "media:episodes:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.Purge(ctx, "media:")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "an underscore in a key is not a wildcard")

	_, _, err = repo.Get(ctx, "media_other")
	assert.NoError(t, err)

	n, err = repo.Purge(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMigrationVersion(t *testing.T) {
	db := setupTestDB(t)

	version, dirty, err := MigrationVersion(db.Writer)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)
}
