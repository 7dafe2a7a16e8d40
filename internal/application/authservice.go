package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
	"github.com/ericfisherdev/authorsite/internal/htmlcontent"
)

// Messages shown on the login page.
const (
	MsgLoginSuccess = "Successfully logged in!"
	MsgLoginFailed  = "Login failed"
)

// AuthService signs authors in against the CMS JWT endpoint and keeps the
// returned token in a server-side session. It never verifies tokens itself;
// the CMS is the only judge of whether a token is still accepted.
type AuthService struct {
	issuer   driven.TokenIssuer
	sessions driven.SessionStore
	now      func() time.Time
	logger   *slog.Logger
}

// NewAuthService creates an AuthService. now may be nil to use time.Now.
func NewAuthService(issuer driven.TokenIssuer, sessions driven.SessionStore, now func() time.Time, logger *slog.Logger) *AuthService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		issuer:   issuer,
		sessions: sessions,
		now:      now,
		logger:   logger,
	}
}

// Login exchanges credentials for a token and stores it under a new session
// id. Blank credentials fail validation without calling the CMS.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.Session, error) {
	username = strings.TrimSpace(username)

	verr := &ValidationError{}
	if username == "" {
		verr.add("username", "Username is required")
	}
	if password == "" {
		verr.add("password", "Password is required")
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	tok, err := s.issuer.IssueToken(ctx, username, password)
	if err != nil {
		s.logger.Info("login rejected", "username", username, "error", err)
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	expires := tok.ExpiresAt
	if expires.IsZero() {
		expires = TokenExpiry(tok.Token)
	}

	session := model.Session{
		ID:          uuid.NewString(),
		Token:       tok.Token,
		DisplayName: tok.DisplayName,
		Email:       tok.Email,
		ExpiresAt:   expires,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	s.logger.Info("author signed in", "display_name", session.DisplayName, "expires_at", session.ExpiresAt)
	return &session, nil
}

// Logout removes the session. Unknown ids are not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Session returns the stored session for id, or nil if there is none. An
// expired session is still returned so that submissions can ask the author to
// sign in again instead of silently posting anonymously.
func (s *AuthService) Session(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, nil
	}
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return session, nil
}

// PurgeExpired removes sessions whose token expired before now.
func (s *AuthService) PurgeExpired(ctx context.Context) (int, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("purging expired sessions: %w", err)
	}
	return n, nil
}

// ActorFor returns the explicit actor for a submission: the signed-in author
// when a session exists, otherwise an anonymous visitor with the supplied
// name and email.
func ActorFor(session *model.Session, name, email string) model.Actor {
	if session != nil && session.Token != "" {
		return model.AdminActor{
			Token:       session.Token,
			DisplayName: session.DisplayName,
			Email:       session.Email,
		}
	}
	return model.AnonymousActor{Name: name, Email: email}
}

// TokenExpiry returns the exp claim of a JWT without verifying its signature,
// or the zero time if the token has no readable exp claim.
func TokenExpiry(token string) time.Time {
	if token == "" {
		return time.Time{}
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// TokenExpired reports whether token carries an exp claim at or before now.
func TokenExpired(token string, now time.Time) bool {
	exp := TokenExpiry(token)
	return !exp.IsZero() && !now.Before(exp)
}

// LoginFailureMessage turns a Login error into text for the login page. The
// CMS's own message is shown when it sent one.
func LoginFailureMessage(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return MsgLoginFailed
	}
	var statusErr *driven.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		if msg := strings.TrimSpace(htmlcontent.DecodeEntities(htmlcontent.StripTags(statusErr.Message))); msg != "" {
			return msg
		}
	}
	return MsgLoginFailed
}
