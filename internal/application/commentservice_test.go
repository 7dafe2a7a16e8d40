package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/authorsite/internal/application"
	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

var submitNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"iss": "cms.example.com"}
	if !exp.IsZero() {
		claims["exp"] = exp.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newCommentService(cms *mockCMS) *application.CommentService {
	return application.NewCommentService(cms, func() time.Time { return submitNow }, discardLogger())
}

func anonymous() model.AnonymousActor {
	return model.AnonymousActor{Name: "Grace Hopper", Email: "grace@example.com"}
}

func TestCommentsOpen(t *testing.T) {
	tests := []struct {
		name     string
		postDate time.Time
		want     bool
	}{
		{name: "published today", postDate: submitNow, want: true},
		{name: "exactly 28 days", postDate: submitNow.Add(-28 * 24 * time.Hour), want: true},
		{name: "28 days and a minute", postDate: submitNow.Add(-28*24*time.Hour - time.Minute), want: false},
		{name: "a year old", postDate: submitNow.AddDate(-1, 0, 0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, application.CommentsOpen(tt.postDate, submitNow))
		})
	}
}

func TestCommentService_AnonymousRootRefetchesFirstPage(t *testing.T) {
	cms := &mockCMS{listComments: pagedComments(rootRecords(25))}
	feed := newFeed(cms)
	ctx := context.Background()
	require.NoError(t, feed.Load(ctx))
	require.NoError(t, feed.SeeMore(ctx))

	svc := newCommentService(cms)
	result, err := svc.Submit(ctx, feed, anonymous(), submitNow.AddDate(0, 0, -3), model.CommentInput{
		PostID:  testPostID,
		Content: "  What a wonderful post!  ",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.RefreshedPage)
	assert.Contains(t, result.Notice, application.MsgCommentThanks)
	assert.Contains(t, result.Notice, "reviewed by our admin team")

	created := cms.createdRequests()
	require.Len(t, created, 1)
	assert.Equal(t, driven.CreateCommentRequest{
		PostID:      testPostID,
		Content:     "What a wonderful post!",
		AuthorName:  "Grace Hopper",
		AuthorEmail: "grace@example.com",
	}, created[0])

	assert.Equal(t, []int{1, 2, 1}, cms.pagesRequested())
	assert.Equal(t, 1, feed.Snapshot().Cursor.CurrentPage)
}

func TestCommentService_ReplyRefetchesCurrentPage(t *testing.T) {
	cms := &mockCMS{listComments: pagedComments(rootRecords(25))}
	feed := newFeed(cms)
	ctx := context.Background()
	require.NoError(t, feed.Load(ctx))
	require.NoError(t, feed.SeeMore(ctx))

	svc := newCommentService(cms)
	result, err := svc.Submit(ctx, feed, anonymous(), submitNow, model.CommentInput{
		PostID:   testPostID,
		ParentID: 12,
		Content:  "Replying to your comment.",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.RefreshedPage)
	assert.Equal(t, int64(12), cms.createdRequests()[0].ParentID)
	assert.Equal(t, []int{1, 2, 2}, cms.pagesRequested())
	assert.Len(t, feed.Snapshot().Roots, 20, "earlier pages stay loaded")
}

func TestCommentService_AdminSendsTokenWithoutIdentity(t *testing.T) {
	cms := &mockCMS{}
	token := signedToken(t, submitNow.Add(time.Hour))
	svc := newCommentService(cms)

	result, err := svc.Submit(context.Background(), nil, model.AdminActor{Token: token, DisplayName: "Author"}, submitNow, model.CommentInput{
		PostID:  testPostID,
		Content: "Thanks everyone for reading.",
	})

	require.NoError(t, err)
	assert.Equal(t, application.MsgCommentThanks, result.Notice)

	req := cms.createdRequests()[0]
	assert.Equal(t, token, req.Token)
	assert.Empty(t, req.AuthorName)
	assert.Empty(t, req.AuthorEmail)
}

func TestCommentService_Validation(t *testing.T) {
	tests := []struct {
		name   string
		actor  model.Actor
		input  model.CommentInput
		fields map[string]string
	}{
		{
			name:  "anonymous missing everything",
			actor: model.AnonymousActor{},
			input: model.CommentInput{PostID: testPostID},
			fields: map[string]string{
				"fullName": "Full name is required",
				"email":    "Email is required",
				"content":  "Comment is required",
			},
		},
		{
			name:  "anonymous short name and bad email",
			actor: model.AnonymousActor{Name: "G", Email: "not-an-email"},
			input: model.CommentInput{PostID: testPostID, Content: "Long enough comment"},
			fields: map[string]string{
				"fullName": "Full name must be at least 2 characters",
				"email":    "Please enter a valid email",
			},
		},
		{
			name:  "anonymous long name",
			actor: model.AnonymousActor{Name: strings.Repeat("n", 51), Email: "a@example.com"},
			input: model.CommentInput{PostID: testPostID, Content: "Long enough comment"},
			fields: map[string]string{
				"fullName": "Full name must be less than 50 characters",
			},
		},
		{
			name:  "content too short",
			actor: anonymous(),
			input: model.CommentInput{PostID: testPostID, Content: "short"},
			fields: map[string]string{
				"content": "Comment must be at least 10 characters",
			},
		},
		{
			name:  "content too long",
			actor: anonymous(),
			input: model.CommentInput{PostID: testPostID, Content: strings.Repeat("x", 1001)},
			fields: map[string]string{
				"content": "Comment must be less than 1000 characters",
			},
		},
		{
			name:  "admin content only",
			actor: model.AdminActor{Token: "opaque"},
			input: model.CommentInput{PostID: testPostID, Content: "tiny"},
			fields: map[string]string{
				"content": "Comment must be at least 10 characters",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cms := &mockCMS{}
			svc := newCommentService(cms)

			_, err := svc.Submit(context.Background(), nil, tt.actor, submitNow, tt.input)

			var verr *application.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.fields, verr.Fields)
			assert.Empty(t, cms.createdRequests(), "submission blocked")
		})
	}
}

func TestCommentService_AdminRejectedMustReauthenticate(t *testing.T) {
	for _, status := range []int{401, 403} {
		cms := &mockCMS{createComment: func(context.Context, driven.CreateCommentRequest) (model.CommentRecord, error) {
			return model.CommentRecord{}, errors.Join(driven.ErrUnauthorized, &driven.StatusError{StatusCode: status})
		}}
		svc := newCommentService(cms)

		_, err := svc.Submit(context.Background(), nil, model.AdminActor{Token: "opaque"}, submitNow, model.CommentInput{
			PostID:  testPostID,
			Content: "An author comment here.",
		})

		assert.ErrorIs(t, err, application.ErrReauthenticate, "status %d", status)
	}
}

func TestCommentService_ExpiredAdminTokenNotPosted(t *testing.T) {
	cms := &mockCMS{}
	svc := newCommentService(cms)
	expired := signedToken(t, submitNow.Add(-time.Minute))

	_, err := svc.Submit(context.Background(), nil, model.AdminActor{Token: expired}, submitNow, model.CommentInput{
		PostID:  testPostID,
		Content: "An author comment here.",
	})

	assert.ErrorIs(t, err, application.ErrReauthenticate)
	assert.Empty(t, cms.createdRequests())
}

func TestCommentService_AnonymousUnauthorizedIsGenericFailure(t *testing.T) {
	cms := &mockCMS{createComment: func(context.Context, driven.CreateCommentRequest) (model.CommentRecord, error) {
		return model.CommentRecord{}, driven.ErrUnauthorized
	}}
	svc := newCommentService(cms)

	_, err := svc.Submit(context.Background(), nil, anonymous(), submitNow, model.CommentInput{
		PostID:  testPostID,
		Content: "A visitor comment here.",
	})

	assert.ErrorIs(t, err, application.ErrSubmitFailed)
	assert.NotErrorIs(t, err, application.ErrReauthenticate)
}

func TestCommentService_NetworkFailure(t *testing.T) {
	cms := &mockCMS{createComment: func(context.Context, driven.CreateCommentRequest) (model.CommentRecord, error) {
		return model.CommentRecord{}, &driven.StatusError{StatusCode: 500, Message: "db down"}
	}}
	feed := newFeed(cms)
	svc := newCommentService(cms)

	_, err := svc.Submit(context.Background(), feed, anonymous(), submitNow, model.CommentInput{
		PostID:  testPostID,
		Content: "A visitor comment here.",
	})

	require.ErrorIs(t, err, application.ErrSubmitFailed)
	var statusErr *driven.StatusError
	assert.ErrorAs(t, err, &statusErr)
	assert.Empty(t, cms.pagesRequested(), "no refetch after a failed post")
}

func TestCommentService_ClosedPost(t *testing.T) {
	cms := &mockCMS{}
	svc := newCommentService(cms)

	_, err := svc.Submit(context.Background(), nil, anonymous(), submitNow.AddDate(0, -2, 0), model.CommentInput{
		PostID:  testPostID,
		Content: "Too late to the party.",
	})

	assert.ErrorIs(t, err, application.ErrCommentsClosed)
	assert.Empty(t, cms.createdRequests())
}

func TestCommentService_NotIdempotent(t *testing.T) {
	cms := &mockCMS{}
	svc := newCommentService(cms)
	in := model.CommentInput{PostID: testPostID, Content: "Posting this twice."}

	_, err := svc.Submit(context.Background(), nil, anonymous(), submitNow, in)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), nil, anonymous(), submitNow, in)
	require.NoError(t, err)

	assert.Len(t, cms.createdRequests(), 2)
}

func TestCommentService_RefreshFailureStillSucceeds(t *testing.T) {
	cms := &mockCMS{listComments: func(context.Context, int64, int, int) (model.CommentPage, error) {
		return model.CommentPage{}, driven.ErrMalformedResponse
	}}
	feed := newFeed(cms)
	svc := newCommentService(cms)

	result, err := svc.Submit(context.Background(), feed, anonymous(), submitNow, model.CommentInput{
		PostID:  testPostID,
		Content: "Posted but the list failed.",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Notice)
	assert.Equal(t, model.FeedStateError, feed.Snapshot().State)
}
