// Package httphandler serves the JSON API: health, assembled comment trees and
// the media catalogue.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ericfisherdev/authorsite/internal/application"
	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	cms     driven.CMSClient
	media   *application.MediaService
	health  *application.HealthService
	perPage int
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. perPage is the
// comment page size requested from the CMS.
func NewHandler(
	cms driven.CMSClient,
	media *application.MediaService,
	health *application.HealthService,
	perPage int,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cms:     cms,
		media:   media,
		health:  health,
		perPage: perPage,
		logger:  logger,
	}
}

// RegisterAPIRoutes registers every /api/v1 route on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/posts/{id}/comments", h.ListComments)
	mux.HandleFunc("GET /api/v1/media/shows", h.ListShows)
	mux.HandleFunc("GET /api/v1/media/shows/{slug}/episodes", h.ListEpisodes)
}

// ApplyMiddleware wraps next with recovery and request logging.
func ApplyMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, next)
	wrapped = securityHeadersMiddleware(wrapped)
	wrapped = loggingMiddleware(logger, wrapped)
	return wrapped
}

// Health reports the state of local dependencies. It answers 503 when any
// check fails so container orchestrators can restart the instance.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, toHealthResponse(report))
}

// ListComments returns one server page of a post's comments assembled into a
// reply tree. Replies whose parent is on another page are not included.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || postID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			writeError(w, http.StatusBadRequest, "invalid page")
			return
		}
	}

	result, err := h.cms.ListComments(r.Context(), postID, page, h.perPage)
	if err != nil {
		h.logger.Error("failed to list comments", "post_id", postID, "page", page, "error", err)
		writeUpstreamError(w, err)
		return
	}

	cursor := model.PaginationCursor{
		CurrentPage:   page,
		TotalPages:    result.TotalPages,
		TotalComments: result.Total,
		PerPage:       h.perPage,
	}.Clamp()
	if cursor.CurrentPage != page {
		writeError(w, http.StatusBadRequest, "page out of range")
		return
	}

	roots := application.AssembleComments(result.Records)

	writeJSON(w, http.StatusOK, CommentPageResponse{
		PostID:     postID,
		Page:       cursor.CurrentPage,
		TotalPages: cursor.TotalPages,
		Total:      cursor.TotalComments,
		Comments:   toCommentResponses(roots, application.DefaultMaxDepth),
	})
}

// ListShows returns every media show.
func (h *Handler) ListShows(w http.ResponseWriter, r *http.Request) {
	shows, err := h.media.Shows(r.Context())
	if err != nil {
		h.logger.Error("failed to list shows", "error", err)
		writeUpstreamError(w, err)
		return
	}

	resp := make([]ShowResponse, 0, len(shows))
	for _, s := range shows {
		resp = append(resp, toShowResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListEpisodes returns the episodes of the show with the given slug.
func (h *Handler) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	show, err := h.media.ShowBySlug(r.Context(), slug)
	if errors.Is(err, application.ErrShowNotFound) {
		writeError(w, http.StatusNotFound, "show not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load show", "slug", slug, "error", err)
		writeUpstreamError(w, err)
		return
	}

	episodes, err := h.media.Episodes(r.Context(), show.TagID)
	if err != nil {
		h.logger.Error("failed to list episodes", "slug", slug, "tag_id", show.TagID, "error", err)
		writeUpstreamError(w, err)
		return
	}

	resp := make([]EpisodeResponse, 0, len(episodes))
	for _, ep := range episodes {
		resp = append(resp, toEpisodeResponse(ep))
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeUpstreamError maps a CMS failure onto a response. Nothing the CMS
// returns is fatal; the caller may retry.
func writeUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, driven.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, driven.ErrMalformedResponse):
		writeError(w, http.StatusBadGateway, "malformed response from content service")
	default:
		writeError(w, http.StatusBadGateway, "content service unavailable")
	}
}
