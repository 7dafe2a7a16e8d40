package model

import "time"

// AuthToken is the response of the CMS JWT endpoint.
type AuthToken struct {
	Token       string
	DisplayName string
	Email       string
	ExpiresAt   time.Time // Zero when the token carries no exp claim.
}

// Session binds a browser cookie to a stored CMS token.
type Session struct {
	ID          string
	Token       string
	DisplayName string
	Email       string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Expired reports whether the stored token has passed its expiry at now.
// Sessions without an expiry never expire locally; the CMS remains the judge.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
