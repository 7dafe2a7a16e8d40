package application_test

import (
	"context"
	"image"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// --- Mock implementations ---

type listCommentsCall struct {
	PostID  int64
	Page    int
	PerPage int
}

type mockCMS struct {
	mu sync.Mutex

	listComments  func(ctx context.Context, postID int64, page, perPage int) (model.CommentPage, error)
	createComment func(ctx context.Context, req driven.CreateCommentRequest) (model.CommentRecord, error)
	listPosts     func(ctx context.Context, q model.PostQuery) (model.PostPage, error)
	getPost       func(ctx context.Context, id int64) (*model.Post, error)
	findTag       func(ctx context.Context, slug string) (*model.Tag, error)

	commentCalls []listCommentsCall
	created      []driven.CreateCommentRequest
	postQueries  []model.PostQuery
	tagLookups   []string
}

var _ driven.CMSClient = (*mockCMS)(nil)

func (m *mockCMS) ListComments(ctx context.Context, postID int64, page, perPage int) (model.CommentPage, error) {
	m.mu.Lock()
	m.commentCalls = append(m.commentCalls, listCommentsCall{PostID: postID, Page: page, PerPage: perPage})
	fn := m.listComments
	m.mu.Unlock()
	if fn == nil {
		return model.CommentPage{TotalPages: 1}, nil
	}
	return fn(ctx, postID, page, perPage)
}

func (m *mockCMS) CreateComment(ctx context.Context, req driven.CreateCommentRequest) (model.CommentRecord, error) {
	m.mu.Lock()
	m.created = append(m.created, req)
	fn := m.createComment
	m.mu.Unlock()
	if fn == nil {
		return model.CommentRecord{ID: 999, Post: req.PostID, Parent: req.ParentID, Content: req.Content}, nil
	}
	return fn(ctx, req)
}

func (m *mockCMS) ListPosts(ctx context.Context, q model.PostQuery) (model.PostPage, error) {
	m.mu.Lock()
	m.postQueries = append(m.postQueries, q)
	fn := m.listPosts
	m.mu.Unlock()
	if fn == nil {
		return model.PostPage{}, nil
	}
	return fn(ctx, q)
}

func (m *mockCMS) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	if m.getPost == nil {
		return nil, driven.ErrNotFound
	}
	return m.getPost(ctx, id)
}

func (m *mockCMS) FindTagBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	m.mu.Lock()
	m.tagLookups = append(m.tagLookups, slug)
	fn := m.findTag
	m.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, slug)
}

func (m *mockCMS) pagesRequested() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	pages := make([]int, 0, len(m.commentCalls))
	for _, c := range m.commentCalls {
		pages = append(pages, c.Page)
	}
	return pages
}

func (m *mockCMS) createdRequests() []driven.CreateCommentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]driven.CreateCommentRequest(nil), m.created...)
}

// pagedComments serves records split into pages of perPage, reporting the
// totals the way the CMS headers do.
func pagedComments(records []model.CommentRecord) func(context.Context, int64, int, int) (model.CommentPage, error) {
	return func(_ context.Context, _ int64, page, perPage int) (model.CommentPage, error) {
		total := len(records)
		totalPages := (total + perPage - 1) / perPage
		start := (page - 1) * perPage
		if start > total {
			start = total
		}
		end := start + perPage
		if end > total {
			end = total
		}
		return model.CommentPage{
			Records:    append([]model.CommentRecord(nil), records[start:end]...),
			TotalPages: totalPages,
			Total:      total,
		}, nil
	}
}

type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	err      error
}

var _ driven.SessionStore = (*mockSessionStore)(nil)

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]model.Session)}
}

func (m *mockSessionStore) Create(_ context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionStore) Get(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *mockSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return m.err
}

func (m *mockSessionStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

type cacheEntry struct {
	value    []byte
	storedAt time.Time
}

type mockCacheStore struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	getErr  error
	sets    int
}

var _ driven.CacheStore = (*mockCacheStore)(nil)

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{entries: make(map[string]cacheEntry)}
}

func (m *mockCacheStore) Get(_ context.Context, key string) ([]byte, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, time.Time{}, m.getErr
	}
	e, ok := m.entries[key]
	if !ok {
		return nil, time.Time{}, driven.ErrCacheMiss
	}
	return e.value, e.storedAt, nil
}

func (m *mockCacheStore) Set(_ context.Context, key string, value []byte, storedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = cacheEntry{value: value, storedAt: storedAt}
	m.sets++
	return nil
}

func (m *mockCacheStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *mockCacheStore) Purge(_ context.Context, prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

type mailCall struct {
	TemplateID string
	Params     map[string]string
}

type mockMailer struct {
	calls []mailCall
	err   error
}

var _ driven.Mailer = (*mockMailer)(nil)

func (m *mockMailer) Send(_ context.Context, templateID string, params map[string]string) error {
	m.calls = append(m.calls, mailCall{TemplateID: templateID, Params: params})
	return m.err
}

type mockIssuer struct {
	token model.AuthToken
	err   error
	calls int
}

var _ driven.TokenIssuer = (*mockIssuer)(nil)

func (m *mockIssuer) IssueToken(_ context.Context, _, _ string) (model.AuthToken, error) {
	m.calls++
	return m.token, m.err
}

type mockImageFetcher struct {
	images map[string]image.Image
	err    error
}

var _ driven.ImageFetcher = (*mockImageFetcher)(nil)

func (m *mockImageFetcher) FetchImage(_ context.Context, url string) (image.Image, error) {
	if m.err != nil {
		return nil, m.err
	}
	img, ok := m.images[url]
	if !ok {
		return nil, driven.ErrNotFound
	}
	return img, nil
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
