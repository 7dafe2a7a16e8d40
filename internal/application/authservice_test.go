package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/authorsite/internal/application"
	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

func TestAuthService_LoginStoresSession(t *testing.T) {
	clock := newFakeClock(submitNow)
	exp := submitNow.Add(7 * 24 * time.Hour).Truncate(time.Second)
	issuer := &mockIssuer{token: model.AuthToken{
		Token:       signedToken(t, exp),
		DisplayName: "The Author",
		Email:       "author@example.com",
	}}
	store := newMockSessionStore()
	svc := application.NewAuthService(issuer, store, clock.Now, discardLogger())

	session, err := svc.Login(context.Background(), " author ", "secret")
	require.NoError(t, err)

	_, err = uuid.Parse(session.ID)
	assert.NoError(t, err, "session ids are uuids")
	assert.Equal(t, "The Author", session.DisplayName)
	assert.True(t, exp.Equal(session.ExpiresAt), "expiry read from the exp claim")
	assert.Equal(t, submitNow, session.CreatedAt)

	stored, err := svc.Session(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, issuer.token.Token, stored.Token)
}

func TestAuthService_LoginRequiresCredentials(t *testing.T) {
	issuer := &mockIssuer{}
	svc := application.NewAuthService(issuer, newMockSessionStore(), nil, discardLogger())

	_, err := svc.Login(context.Background(), "  ", "")

	var verr *application.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Username is required", verr.Field("username"))
	assert.Equal(t, "Password is required", verr.Field("password"))
	assert.Zero(t, issuer.calls)
}

func TestAuthService_LoginRejected(t *testing.T) {
	issuer := &mockIssuer{err: errors.Join(driven.ErrUnauthorized, &driven.StatusError{
		StatusCode: 403,
		Message:    "<strong>Error:</strong> The password you entered for the username <strong>author</strong> is incorrect.",
	})}
	store := newMockSessionStore()
	svc := application.NewAuthService(issuer, store, nil, discardLogger())

	_, err := svc.Login(context.Background(), "author", "wrong")

	require.ErrorIs(t, err, driven.ErrUnauthorized)
	assert.Equal(t, "Error: The password you entered for the username author is incorrect.", application.LoginFailureMessage(err))
	assert.Empty(t, store.sessions)
}

func TestLoginFailureMessage_Fallback(t *testing.T) {
	assert.Equal(t, application.MsgLoginFailed, application.LoginFailureMessage(errors.New("dial tcp: refused")))
	assert.Equal(t, application.MsgLoginFailed, application.LoginFailureMessage(&driven.StatusError{StatusCode: 500}))
}

func TestAuthService_LogoutAndMissingSession(t *testing.T) {
	store := newMockSessionStore()
	store.sessions["s1"] = model.Session{ID: "s1", Token: "t"}
	svc := application.NewAuthService(&mockIssuer{}, store, nil, discardLogger())
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, "s1"))
	require.NoError(t, svc.Logout(ctx, ""))

	session, err := svc.Session(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, session)

	session, err = svc.Session(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestAuthService_PurgeExpired(t *testing.T) {
	clock := newFakeClock(submitNow)
	store := newMockSessionStore()
	store.sessions["old"] = model.Session{ID: "old", ExpiresAt: submitNow.Add(-time.Hour)}
	store.sessions["live"] = model.Session{ID: "live", ExpiresAt: submitNow.Add(time.Hour)}
	store.sessions["forever"] = model.Session{ID: "forever"}
	svc := application.NewAuthService(&mockIssuer{}, store, clock.Now, discardLogger())

	n, err := svc.PurgeExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, store.sessions, 2)
}

func TestActorFor(t *testing.T) {
	admin := application.ActorFor(&model.Session{Token: "tok", DisplayName: "Author", Email: "a@example.com"}, "ignored", "ignored@example.com")
	assert.Equal(t, model.AdminActor{Token: "tok", DisplayName: "Author", Email: "a@example.com"}, admin)

	anon := application.ActorFor(nil, "Visitor", "v@example.com")
	assert.Equal(t, model.AnonymousActor{Name: "Visitor", Email: "v@example.com"}, anon)

	tokenless := application.ActorFor(&model.Session{}, "Visitor", "v@example.com")
	assert.IsType(t, model.AnonymousActor{}, tokenless)
}

func TestTokenExpiry(t *testing.T) {
	exp := submitNow.Add(time.Hour).Truncate(time.Second)

	assert.True(t, exp.Equal(application.TokenExpiry(signedToken(t, exp))))
	assert.True(t, application.TokenExpiry(signedToken(t, time.Time{})).IsZero(), "no exp claim")
	assert.True(t, application.TokenExpiry("not-a-jwt").IsZero())
	assert.True(t, application.TokenExpiry("").IsZero())

	assert.False(t, application.TokenExpired(signedToken(t, exp), submitNow))
	assert.True(t, application.TokenExpired(signedToken(t, exp), exp))
	assert.False(t, application.TokenExpired("not-a-jwt", submitNow))
}
