package web

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
)

const (
	sessionCookieName = "authorsite_session"
	visitorCookieName = "authorsite_visitor"
	visitorCookieAge  = 30 * 24 * time.Hour
)

// visitorID returns the anonymous visitor id that keys comment feeds,
// issuing one on first visit.
func (h *Handler) visitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(visitorCookieAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies,
	})
	return id
}

// currentSession returns the signed-in author's session, or nil. Lookup
// failures are logged and treated as signed out.
func (h *Handler) currentSession(r *http.Request) *model.Session {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	session, err := h.auth.Session(r.Context(), c.Value)
	if err != nil {
		h.logger.Warn("failed to load session", "error", err)
		return nil
	}
	return session
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, session *model.Session) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies,
	}
	if !session.ExpiresAt.IsZero() {
		cookie.Expires = session.ExpiresAt
	}
	http.SetCookie(w, cookie)
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies,
	})
}
