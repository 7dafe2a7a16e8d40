package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

func TestSessionRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testKey)
	ctx := context.Background()

	session := model.Session{
		ID:          "9f1c",
		Token:       "eyJhbGciOiJIUzI1NiJ9.payload.sig",
		DisplayName: "The Author",
		Email:       "author@example.com",
		ExpiresAt:   time.Date(2025, 6, 22, 12, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, session))

	got, err := repo.Get(ctx, "9f1c")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, session, *got)
}

func TestSessionRepo_TokenEncryptedAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testKey)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, model.Session{ID: "s", Token: "plain-token"}))

	var stored string
	require.NoError(t, db.Reader.QueryRowContext(ctx, `SELECT token FROM sessions WHERE id = 's'`).Scan(&stored))
	assert.NotContains(t, stored, "plain-token")

	other := NewSessionRepo(db, []byte("ffffffffffffffffffffffffffffffff"))
	_, err := other.Get(ctx, "s")
	assert.Error(t, err, "a different key cannot decrypt")
}

func TestSessionRepo_GetMissing(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t), testKey)

	got, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepo_NoKey(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t), nil)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Create(ctx, model.Session{ID: "s", Token: "t"}), driven.ErrEncryptionKeyNotSet)
	_, err := repo.Get(ctx, "s")
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
}

func TestSessionRepo_DeleteAndDeleteExpired(t *testing.T) {
	repo := NewSessionRepo(setupTestDB(t), testKey)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, model.Session{ID: "expired", Token: "t", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, repo.Create(ctx, model.Session{ID: "boundary", Token: "t", ExpiresAt: now}))
	require.NoError(t, repo.Create(ctx, model.Session{ID: "live", Token: "t", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, model.Session{ID: "no-expiry", Token: "t"}))
	require.NoError(t, repo.Create(ctx, model.Session{ID: "logged-out", Token: "t"}))

	require.NoError(t, repo.Delete(ctx, "logged-out"))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for id, want := range map[string]bool{"expired": false, "boundary": false, "live": true, "no-expiry": true, "logged-out": false} {
		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got != nil, id)
	}
}
