package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/authorsite/internal/application"
	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// --- Fakes ---

type fakeCMS struct {
	mu       sync.Mutex
	comments map[int]model.CommentPage
	posts    map[int64]model.Post
	listing  map[int]model.PostPage
	tags     map[string]*model.Tag
	created  []driven.CreateCommentRequest
	pages    []int
	create   func(driven.CreateCommentRequest) error
}

func (f *fakeCMS) ListComments(_ context.Context, _ int64, page, _ int) (model.CommentPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages = append(f.pages, page)
	return f.comments[page], nil
}

func (f *fakeCMS) CreateComment(_ context.Context, req driven.CreateCommentRequest) (model.CommentRecord, error) {
	f.mu.Lock()
	f.created = append(f.created, req)
	create := f.create
	f.mu.Unlock()
	if create != nil {
		if err := create(req); err != nil {
			return model.CommentRecord{}, err
		}
	}
	return model.CommentRecord{ID: 500, Post: req.PostID, Parent: req.ParentID}, nil
}

func (f *fakeCMS) ListPosts(_ context.Context, q model.PostQuery) (model.PostPage, error) {
	return f.listing[q.Category], nil
}

func (f *fakeCMS) GetPost(_ context.Context, id int64) (*model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, driven.ErrNotFound
	}
	return &p, nil
}

func (f *fakeCMS) FindTagBySlug(_ context.Context, slug string) (*model.Tag, error) {
	return f.tags[slug], nil
}

func (f *fakeCMS) requestedPages() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.pages...)
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]model.Session
}

func (f *fakeSessions) Create(_ context.Context, s model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessions) DeleteExpired(context.Context, time.Time) (int, error) { return 0, nil }

type fakeIssuer struct {
	token model.AuthToken
	err   error
}

func (f *fakeIssuer) IssueToken(context.Context, string, string) (model.AuthToken, error) {
	return f.token, f.err
}

type fakeMailer struct {
	sent []map[string]string
	err  error
}

func (f *fakeMailer) Send(_ context.Context, _ string, params map[string]string) error {
	f.sent = append(f.sent, params)
	return f.err
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (m *memCache) Get(_ context.Context, key string) ([]byte, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, time.Time{}, driven.ErrCacheMiss
	}
	return v, time.Now(), nil
}

func (m *memCache) Set(_ context.Context, key string, value []byte, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memCache) Purge(context.Context, string) (int, error) { return 0, nil }

// --- Fixture ---

const (
	testCSRF  = "test-csrf-token"
	openPost  = int64(42)
	oldPost   = int64(7)
	testPerPg = 2
)

type fixture struct {
	cms      *fakeCMS
	sessions *fakeSessions
	issuer   *fakeIssuer
	mailer   *fakeMailer
	mux      *http.ServeMux
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, withMailer bool) *fixture {
	t.Helper()
	now := time.Now().UTC()

	f := &fixture{
		cms: &fakeCMS{
			posts: map[int64]model.Post{
				openPost: {ID: openPost, Title: "Hope &amp; Grace", Content: "<p>Body</p><script>alert(1)</script>", Date: now.Add(-24 * time.Hour)},
				oldPost:  {ID: oldPost, Title: "Old news", Content: "<p>Old</p>", Date: now.AddDate(0, -3, 0)},
			},
			comments: map[int]model.CommentPage{
				1: {TotalPages: 2, Total: 4, Records: []model.CommentRecord{
					{ID: 4, Parent: 1, AuthorName: "Reply Person", Content: "<p>a reply</p>", Date: now},
					{ID: 2, AuthorName: "Second Root", Content: "<p>second</p>", Date: now},
					{ID: 1, AuthorName: "First Root", Content: `<p onclick="x()">first</p>`, Date: now},
				}},
				2: {TotalPages: 2, Total: 4, Records: []model.CommentRecord{
					{ID: 3, AuthorName: "Page Two", Content: "<p>older</p>", Date: now.Add(-time.Hour)},
				}},
			},
			listing: map[int]model.PostPage{
				application.CategoryBlog: {TotalPages: 1, Posts: []model.Post{
					{ID: openPost, Title: "Hope &amp; Grace", Excerpt: "<p>An excerpt</p>", Date: now},
				}},
				application.CategoryShows: {Posts: []model.Post{
					{ID: 1, Slug: "the-author-show", Title: "THE AUTHOR SHOW"},
				}},
				application.CategoryEpisodes: {Posts: []model.Post{
					{ID: 50, Title: "Episode 50", Link: "https://cms.example.com/ep-50", Date: now},
				}},
			},
			tags: map[string]*model.Tag{"the-author-show": {ID: 11}},
		},
		sessions: &fakeSessions{sessions: make(map[string]model.Session)},
		issuer:   &fakeIssuer{},
		mailer:   &fakeMailer{},
		mux:      http.NewServeMux(),
	}

	logger := discardLogger()
	cache := application.NewCache(&memCache{entries: make(map[string][]byte)}, time.Hour, nil, logger)
	media := application.NewMediaService(f.cms, cache, nil, logger)
	feeds := application.NewFeedRegistry(f.cms, testPerPg, time.Second, time.Hour, nil, logger)
	t.Cleanup(feeds.Close)

	svc := Services{
		Content:  application.NewContentService(f.cms, media, logger),
		Media:    media,
		Comments: application.NewCommentService(f.cms, nil, logger),
		Feeds:    feeds,
		Auth:     application.NewAuthService(f.issuer, f.sessions, nil, logger),
	}
	if withMailer {
		svc.Contact = application.NewContactService(f.mailer, "tpl_contact", "tpl_booking", logger)
	}

	site, err := LoadSite()
	require.NoError(t, err)
	h, err := NewHandler(svc, site, false, logger)
	require.NoError(t, err)
	RegisterRoutes(f.mux, h)
	return f
}

const visitor = "5f0c6a52-8f0e-4b7e-9a39-0d1c8c0b1e11"

func (f *fixture) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: visitorCookieName, Value: visitor})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) post(t *testing.T, path string, form url.Values, header http.Header, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if form.Get(csrfFormField) == "" {
		form.Set(csrfFormField, testCSRF)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range header {
		req.Header[k] = v
	}
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
	req.AddCookie(&http.Cookie{Name: visitorCookieName, Value: visitor})
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- Tests ---

func TestHome(t *testing.T) {
	f := newFixture(t, true)

	rec := f.get(t, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Author Site</title>")
	assert.Contains(t, body, "Hope &amp; Grace")
	assert.Contains(t, body, "Episode 50")
	assert.Contains(t, body, `class="active" aria-current="page"`)
	assert.NotNil(t, findCookie(rec, csrfCookieName))
}

func TestAbout(t *testing.T) {
	rec := newFixture(t, true).get(t, "/about")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>About</h1>")
	assert.Contains(t, rec.Body.String(), `href="/contact#booking"`)
}

func TestBlogPost_RendersCommentTree(t *testing.T) {
	f := newFixture(t, true)

	rec := f.get(t, "/blog/42")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Comments (4)")
	assert.Contains(t, body, `id="comment-1"`)
	assert.Contains(t, body, `id="comment-4" data-depth="1"`)
	assert.Contains(t, body, "1 reply")
	assert.Contains(t, body, "See more comments")
	assert.NotContains(t, body, "Show less")
	assert.NotContains(t, body, "onclick")
	assert.NotContains(t, body, "<script>alert")
	assert.Contains(t, body, `name="fullName"`)
	assert.Equal(t, []int{1}, f.cms.requestedPages())
}

func TestBlogPost_NotFound(t *testing.T) {
	f := newFixture(t, true)

	assert.Equal(t, http.StatusNotFound, f.get(t, "/blog/999").Code)
	assert.Equal(t, http.StatusNotFound, f.get(t, "/blog/abc").Code)
}

func TestBlogPost_ClosedCommentsHideForm(t *testing.T) {
	rec := newFixture(t, true).get(t, "/blog/7")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Comments are closed for this post")
	assert.NotContains(t, rec.Body.String(), `name="fullName"`)
}

func TestMoreComments_Fragment(t *testing.T) {
	f := newFixture(t, true)
	f.get(t, "/blog/42")

	rec := f.post(t, "/blog/42/comments/more", nil, http.Header{"Hx-Request": {"true"}})

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, `<div id="comment-feed"`), "fragment only")
	assert.Contains(t, body, "Page Two")
	assert.Contains(t, body, "Show less")
	assert.NotContains(t, body, "See more comments")
	assert.Equal(t, []int{1, 2}, f.cms.requestedPages())

	rec = f.post(t, "/blog/42/comments/less", nil, http.Header{"Hx-Request": {"true"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Page Two")
	assert.Equal(t, []int{1, 2, 1}, f.cms.requestedPages())
}

func TestMoreComments_RedirectKeepsFeed(t *testing.T) {
	f := newFixture(t, true)

	rec := f.post(t, "/blog/42/comments/more", nil, nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/42?keep=1#comments", rec.Header().Get("Location"))
	assert.Equal(t, []int{1}, f.cms.requestedPages(), "an unloaded feed loads page 1")

	rec = f.get(t, "/blog/42?keep=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{1}, f.cms.requestedPages(), "kept feed is not refetched")
}

func TestPagination_RequiresCSRF(t *testing.T) {
	f := newFixture(t, true)

	rec := f.post(t, "/blog/42/comments/more", url.Values{csrfFormField: {"wrong"}}, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.cms.requestedPages())
}

func TestSubmitComment_Anonymous(t *testing.T) {
	f := newFixture(t, true)

	rec := f.post(t, "/blog/42/comments", url.Values{
		"fullName": {"Grace Hopper"},
		"email":    {"grace@example.com"},
		"content":  {"A thoughtful comment."},
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), application.MsgCommentThanks)
	assert.Contains(t, rec.Body.String(), "reviewed by our admin team")
	require.Len(t, f.cms.created, 1)
	assert.Equal(t, "Grace Hopper", f.cms.created[0].AuthorName)
	assert.Equal(t, int64(0), f.cms.created[0].ParentID)
	assert.Equal(t, []int{1}, f.cms.requestedPages(), "page 1 refetched")
}

func TestSubmitComment_ValidationErrors(t *testing.T) {
	f := newFixture(t, true)

	rec := f.post(t, "/blog/42/comments", url.Values{
		"fullName": {"G"},
		"email":    {"grace@example.com"},
		"content":  {"short"},
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Full name must be at least 2 characters")
	assert.Contains(t, body, "Comment must be at least 10 characters")
	assert.Contains(t, body, `value="grace@example.com"`)
	assert.Empty(t, f.cms.created)
}

func TestSubmitComment_BadParent(t *testing.T) {
	rec := newFixture(t, true).post(t, "/blog/42/comments", url.Values{"parentId": {"x"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitComment_ClosedPost(t *testing.T) {
	f := newFixture(t, true)

	rec := f.post(t, "/blog/7/comments", url.Values{
		"fullName": {"Grace Hopper"},
		"email":    {"grace@example.com"},
		"content":  {"A thoughtful comment."},
	}, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.cms.created)
}

func TestSubmitComment_UpstreamFailure(t *testing.T) {
	f := newFixture(t, true)
	f.cms.create = func(driven.CreateCommentRequest) error {
		return &driven.StatusError{StatusCode: 500}
	}

	rec := f.post(t, "/blog/42/comments", url.Values{
		"fullName": {"Grace Hopper"},
		"email":    {"grace@example.com"},
		"content":  {"A thoughtful comment."},
	}, nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `</textarea><p class="field-error" role="alert">`+application.MsgSubmitFailed+`</p>`)
	assert.NotContains(t, body, `class="form-error"`)
	assert.Contains(t, body, `value="Grace Hopper"`)
	assert.Contains(t, body, "A thoughtful comment.</textarea>")
}

func TestSubmitComment_MalformedBody(t *testing.T) {
	f := newFixture(t, true)

	req := httptest.NewRequest(http.MethodPost, "/blog/42/comments", strings.NewReader("content=%zz&csrf_token="+testCSRF))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRF})
	req.AddCookie(&http.Cookie{Name: visitorCookieName, Value: visitor})
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.cms.created)
}

func TestSubmitComment_AdminRejectedGoesToLogin(t *testing.T) {
	f := newFixture(t, true)
	f.sessions.sessions["sess-1"] = model.Session{ID: "sess-1", Token: "opaque", DisplayName: "The Author"}
	f.cms.create = func(req driven.CreateCommentRequest) error {
		if req.Token != "opaque" {
			return errors.New("token not sent")
		}
		return errors.Join(driven.ErrUnauthorized, &driven.StatusError{StatusCode: 403})
	}

	rec := f.post(t, "/blog/42/comments", url.Values{"content": {"An author comment."}}, nil,
		&http.Cookie{Name: sessionCookieName, Value: "sess-1"})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?expired=1&next=%2Fblog%2F42", rec.Header().Get("Location"))
	assert.Empty(t, f.sessions.sessions)
	cookie := findCookie(rec, sessionCookieName)
	require.NotNil(t, cookie)
	assert.Negative(t, cookie.MaxAge)
}

func TestLogin(t *testing.T) {
	f := newFixture(t, true)
	f.issuer.token = model.AuthToken{Token: "opaque", DisplayName: "The Author"}

	rec := f.post(t, "/login", url.Values{
		"username": {"author"},
		"password": {"secret"},
		"next":     {"/blog/42"},
	}, nil)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/42", rec.Header().Get("Location"))
	cookie := findCookie(rec, sessionCookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	require.Contains(t, f.sessions.sessions, cookie.Value)

	rec = f.get(t, "/blog/42", cookie)
	assert.Contains(t, rec.Body.String(), "Commenting as <strong>The Author</strong>")
	assert.Contains(t, rec.Body.String(), "Logout")
}

func TestLogin_Rejected(t *testing.T) {
	f := newFixture(t, true)
	f.issuer.err = errors.Join(driven.ErrUnauthorized, &driven.StatusError{
		StatusCode: 403,
		Message:    "<strong>Error:</strong> Unknown username.",
	})

	rec := f.post(t, "/login", url.Values{"username": {"nobody"}, "password": {"secret"}}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Error: Unknown username.")
	assert.Contains(t, body, `value="nobody"`)
	assert.NotContains(t, body, `value="secret"`)
	assert.Nil(t, findCookie(rec, sessionCookieName))
}

func TestLogin_ExpiredNotice(t *testing.T) {
	rec := newFixture(t, true).get(t, "/login?expired=1&next=/blog/42")

	assert.Contains(t, rec.Body.String(), application.MsgSessionExpired)
	assert.Contains(t, rec.Body.String(), `name="next" value="/blog/42"`)
}

func TestLogout(t *testing.T) {
	f := newFixture(t, true)
	f.sessions.sessions["sess-1"] = model.Session{ID: "sess-1", Token: "opaque"}

	rec := f.post(t, "/logout", nil, nil, &http.Cookie{Name: sessionCookieName, Value: "sess-1"})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, f.sessions.sessions)
}

func TestSubmitContact(t *testing.T) {
	f := newFixture(t, true)

	rec := f.post(t, "/contact", url.Values{
		"formType":  {"prayer"},
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
		"email":     {"ada@example.com"},
		"subject":   {"Family"},
		"message":   {"Please pray for my family."},
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgContactSent)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "prayer", f.mailer.sent[0]["form_type"])
}

func TestSubmitContact_Testimony(t *testing.T) {
	f := newFixture(t, true)

	rec := f.post(t, "/contact", url.Values{
		"formType":  {"testimony"},
		"firstName": {"Ada"},
		"lastName":  {"Lovelace"},
		"email":     {"ada@example.com"},
		"subject":   {"Answered"},
		"message":   {"My prayer was answered this week."},
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Share permission is required")
	assert.Contains(t, rec.Body.String(), `name="sharePermission"`)
	assert.Empty(t, f.mailer.sent)
}

func TestSubmitBooking_MailerFailure(t *testing.T) {
	f := newFixture(t, true)
	f.mailer.err = errors.New("emailjs down")

	form := url.Values{
		"firstName":        {"Ada"},
		"lastName":         {"Lovelace"},
		"emailAddress":     {"ada@example.com"},
		"country":          {"UK"},
		"phoneNumber":      {"+44 20 0000 0000"},
		"churchName":       {"St Mary's"},
		"dateOfEvent":      {"2025-09-01"},
		"eventLocation":    {"London"},
		"eventDescription": {"Annual conference"},
	}
	rec := f.post(t, "/contact/booking", form, nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), application.MsgSendFailed)
	assert.Len(t, f.mailer.sent, 1)
}

func TestSubmitContact_NoMailer(t *testing.T) {
	rec := newFixture(t, false).post(t, "/contact", url.Values{"formType": {"questions"}}, nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), msgMailerUnset)
}

func TestShow(t *testing.T) {
	f := newFixture(t, true)

	rec := f.get(t, "/media/the-author-show")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Episode 50")
	assert.Contains(t, rec.Body.String(), `src="/static/img/banner-1.svg"`, "flagship shows use the first banner")

	assert.Equal(t, http.StatusNotFound, f.get(t, "/media/unknown").Code)

	rec = f.get(t, "/media")
	assert.Contains(t, rec.Body.String(), `href="/media/the-author-show"`)
}

func TestStaticAssets(t *testing.T) {
	rec := newFixture(t, true).get(t, "/static/css/site.css")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "--accent")
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                    "/",
		"/blog/42":            "/blog/42",
		"//evil.example.com":  "/",
		"/\\evil.example.com": "/",
		"https://evil.com":    "/",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), "input %q", in)
	}
}

func TestParseSite(t *testing.T) {
	site, err := ParseSite([]byte("title: Test\nnav:\n  - label: Blog\n    path: /blog\n"))
	require.NoError(t, err)
	assert.Equal(t, "Test", site.Title)
	assert.True(t, site.navFor("/blog")[0].Active)

	_, err = ParseSite([]byte("description: no title"))
	assert.Error(t, err)

	_, err = ParseSite([]byte("title: [unclosed"))
	assert.Error(t, err)
}
