package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/authorsite/internal/adapter/driving/http"
	"github.com/ericfisherdev/authorsite/internal/application"
	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// --- Mock implementations ---

type stubCMS struct {
	comments    model.CommentPage
	commentsErr error
	posts       map[int]model.PostPage // keyed by category
	postsErr    error
	tags        map[string]*model.Tag

	mu    sync.Mutex
	pages []int
}

var _ driven.CMSClient = (*stubCMS)(nil)

func (s *stubCMS) ListComments(_ context.Context, _ int64, page, _ int) (model.CommentPage, error) {
	s.mu.Lock()
	s.pages = append(s.pages, page)
	s.mu.Unlock()
	return s.comments, s.commentsErr
}

func (s *stubCMS) CreateComment(_ context.Context, req driven.CreateCommentRequest) (model.CommentRecord, error) {
	return model.CommentRecord{ID: 1, Post: req.PostID}, nil
}

func (s *stubCMS) ListPosts(_ context.Context, q model.PostQuery) (model.PostPage, error) {
	if s.postsErr != nil {
		return model.PostPage{}, s.postsErr
	}
	return s.posts[q.Category], nil
}

func (s *stubCMS) GetPost(context.Context, int64) (*model.Post, error) {
	return nil, driven.ErrNotFound
}

func (s *stubCMS) FindTagBySlug(_ context.Context, slug string) (*model.Tag, error) {
	return s.tags[slug], nil
}

type memStore struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, time.Time{}, driven.ErrCacheMiss
	}
	return v, time.Now(), nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = value
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memStore) Purge(context.Context, string) (int, error) { return 0, nil }

// --- Helpers ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMux(cms *stubCMS, health *application.HealthService) http.Handler {
	if health == nil {
		health = application.NewHealthService(time.Second)
	}
	cache := application.NewCache(&memStore{}, time.Hour, nil, discardLogger())
	media := application.NewMediaService(cms, cache, nil, discardLogger())
	h := httphandler.NewHandler(cms, media, health, 10, discardLogger())

	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, h)
	return httphandler.ApplyMiddleware(mux, discardLogger())
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

var commentTime = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func mediaCMS() *stubCMS {
	return &stubCMS{
		posts: map[int]model.PostPage{
			application.CategoryShows: {Posts: []model.Post{
				{ID: 1, Slug: "the-author-show", Title: "THE AUTHOR SHOW", Link: "https://cms.example.com/the-author-show"},
				{ID: 2, Slug: "untagged", Title: "Guest &amp; Friends"},
			}},
			application.CategoryEpisodes: {Posts: []model.Post{
				{ID: 50, Title: "Episode 50", Date: commentTime, Link: "https://cms.example.com/ep-50",
					Content: `<p>Notes</p><iframe src="https://www.youtube.com/embed/abc123"></iframe>`},
			}},
		},
		tags: map[string]*model.Tag{"the-author-show": {ID: 11, Slug: "the-author-show"}},
	}
}

// --- Tests ---

func TestHealth(t *testing.T) {
	health := application.NewHealthService(time.Second)
	health.Register("cache", func(context.Context) error { return nil })

	rec := get(t, newTestMux(&stubCMS{}, health), "/api/v1/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	var resp httphandler.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Checks, 1)
	assert.True(t, resp.Checks[0].OK)
}

func TestHealth_Degraded(t *testing.T) {
	health := application.NewHealthService(time.Second)
	health.Register("database", func(context.Context) error { return errors.New("database is locked") })

	rec := get(t, newTestMux(&stubCMS{}, health), "/api/v1/health")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp httphandler.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "database is locked", resp.Checks[0].Error)
}

func TestListComments_AssemblesTree(t *testing.T) {
	cms := &stubCMS{comments: model.CommentPage{
		TotalPages: 3,
		Total:      25,
		Records: []model.CommentRecord{
			{ID: 3, Parent: 1, AuthorName: "Reply", Content: "<p>reply</p>", Date: commentTime},
			{ID: 2, AuthorName: "Second", Content: "<p>second</p>", Date: commentTime},
			{ID: 1, AuthorName: "First", Content: "<p>first</p>", Date: commentTime},
		},
	}}

	rec := get(t, newTestMux(cms, nil), "/api/v1/posts/42/comments?page=2")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.CommentPageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, int64(42), resp.PostID)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 25, resp.Total)
	require.Len(t, resp.Comments, 2)

	var first httphandler.CommentResponse
	for _, c := range resp.Comments {
		if c.ID == 1 {
			first = c
		}
	}
	require.Len(t, first.Replies, 1)
	assert.Equal(t, int64(3), first.Replies[0].ID)
	assert.Equal(t, "2025-06-01T09:30:00Z", first.Date)
	assert.Equal(t, []int{2}, cms.pages)
}

func TestListComments_BadInput(t *testing.T) {
	mux := newTestMux(&stubCMS{}, nil)

	tests := []struct {
		name string
		path string
	}{
		{name: "non-numeric id", path: "/api/v1/posts/abc/comments"},
		{name: "zero id", path: "/api/v1/posts/0/comments"},
		{name: "zero page", path: "/api/v1/posts/42/comments?page=0"},
		{name: "junk page", path: "/api/v1/posts/42/comments?page=two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, mux, tt.path)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestListComments_PageBeyondTotal(t *testing.T) {
	cms := &stubCMS{comments: model.CommentPage{TotalPages: 3, Total: 25}}

	rec := get(t, newTestMux(cms, nil), "/api/v1/posts/42/comments?page=99")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "page out of range")
}

func TestListComments_EmptyPostReportsOnePage(t *testing.T) {
	rec := get(t, newTestMux(&stubCMS{}, nil), "/api/v1/posts/42/comments")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp httphandler.CommentPageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Empty(t, resp.Comments)
}

func TestListComments_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not found", err: errors.Join(driven.ErrNotFound, &driven.StatusError{StatusCode: 404}), status: http.StatusNotFound},
		{name: "malformed", err: driven.ErrMalformedResponse, status: http.StatusBadGateway},
		{name: "network", err: errors.New("dial tcp: connection refused"), status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestMux(&stubCMS{commentsErr: tt.err}, nil), "/api/v1/posts/42/comments")
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestListShows(t *testing.T) {
	rec := get(t, newTestMux(mediaCMS(), nil), "/api/v1/media/shows")

	require.Equal(t, http.StatusOK, rec.Code)
	var shows []httphandler.ShowResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&shows))
	require.Len(t, shows, 2)
	assert.Equal(t, httphandler.ShowResponse{
		Title: "THE AUTHOR SHOW",
		Slug:  "the-author-show",
		URL:   "/media/the-author-show",
		Link:  "https://cms.example.com/the-author-show",
		TagID: 11,
	}, shows[0])
	assert.Equal(t, "Guest & Friends", shows[1].Title)
}

func TestListEpisodes(t *testing.T) {
	mux := newTestMux(mediaCMS(), nil)

	rec := get(t, mux, "/api/v1/media/shows/the-author-show/episodes")
	require.Equal(t, http.StatusOK, rec.Code)
	var episodes []httphandler.EpisodeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&episodes))
	require.Len(t, episodes, 1)
	assert.Equal(t, int64(50), episodes[0].ID)
	assert.NotEmpty(t, episodes[0].Color)
	assert.Contains(t, episodes[0].YouTubeURL, "abc123")

	rec = get(t, mux, "/api/v1/media/shows/untagged/episodes")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = get(t, mux, "/api/v1/media/shows/missing/episodes")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListShows_UpstreamFailure(t *testing.T) {
	rec := get(t, newTestMux(&stubCMS{postsErr: errors.New("timeout")}, nil), "/api/v1/media/shows")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /boom", func(http.ResponseWriter, *http.Request) { panic("kaboom") })

	rec := get(t, httphandler.ApplyMiddleware(mux, discardLogger()), "/boom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "internal server error"))
}
