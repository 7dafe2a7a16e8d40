// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/authorsite/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/authorsite/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/authorsite/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/authorsite/internal/application"
)

// Services are the use cases the web handler drives. Contact may be nil when
// no mailer is configured; the forms then report that they are unavailable.
type Services struct {
	Content  *application.ContentService
	Media    *application.MediaService
	Comments *application.CommentService
	Feeds    *application.FeedRegistry
	Auth     *application.AuthService
	Contact  *application.ContactService
}

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	content  *application.ContentService
	media    *application.MediaService
	comments *application.CommentService
	feeds    *application.FeedRegistry
	auth     *application.AuthService
	contact  *application.ContactService

	site          Site
	aboutHTML     string
	secureCookies bool
	now           func() time.Time
	logger        *slog.Logger
}

// NewHandler creates a Handler. The about page is rendered once from the
// embedded markdown.
func NewHandler(svc Services, site Site, secureCookies bool, logger *slog.Logger) (*Handler, error) {
	about, err := contentFS.ReadFile("content/about.md")
	if err != nil {
		return nil, fmt.Errorf("reading about page: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		content:       svc.Content,
		media:         svc.Media,
		comments:      svc.Comments,
		feeds:         svc.Feeds,
		auth:          svc.Auth,
		contact:       svc.Contact,
		site:          site,
		aboutHTML:     RenderMarkdown(string(about)),
		secureCookies: secureCookies,
		now:           time.Now,
		logger:        logger,
	}, nil
}

// page builds the layout data shared by every page.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, title, active string) vm.Page {
	p := vm.Page{
		SiteTitle:   h.site.Title,
		Title:       title,
		Description: h.site.Description,
		Nav:         h.site.navFor(active),
		CSRFToken:   ensureCSRF(w, r, h.secureCookies),
		Year:        h.now().Year(),
	}
	if s := h.currentSession(r); s != nil && !s.Expired(h.now()) {
		p.User = &vm.User{DisplayName: s.DisplayName}
	}
	return p
}

// render writes body inside the layout. The page is rendered to a buffer
// first so a failed render still produces a clean 500.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page vm.Page, body templ.Component) {
	h.write(w, r, status, templates.Layout(page, body))
}

// write renders a bare component, used for fragments.
func (h *Handler) write(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	page := h.page(w, r, http.StatusText(status), "")
	h.render(w, r, status, page, pages.Error(vm.Error{Status: status, Message: msg}))
}

// isFragmentRequest reports whether the request came from site.js and wants
// only the swapped fragment back.
func isFragmentRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
