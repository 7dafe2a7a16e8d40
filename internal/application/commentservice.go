package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// CommentWindow is how long after publication a post accepts comments.
const CommentWindow = 28 * 24 * time.Hour

// Messages shown next to the comment form.
const (
	MsgSessionExpired = "Session expired. Please login again."
	MsgSubmitFailed   = "Failed to submit comment. Please try again."
	MsgCommentsClosed = "Comments are closed for this post as it is more than 28 days old."
	MsgCommentThanks  = "Thank you for your comment!"
	MsgModerationNote = "It has been submitted successfully and will be reviewed by our admin team before being published."
)

var (
	// ErrReauthenticate is returned when a signed-in author's token was
	// rejected or has expired. The caller should send them to /login.
	ErrReauthenticate = errors.New("author session expired")

	// ErrSubmitFailed wraps any other failure to create the comment.
	ErrSubmitFailed = errors.New("comment submission failed")

	// ErrCommentsClosed is returned for posts older than CommentWindow.
	ErrCommentsClosed = errors.New("comments closed for post")
)

// SubmitResult describes a successful submission.
type SubmitResult struct {
	Comment model.CommentRecord
	Notice  string
	// RefreshedPage is the page refetched after posting.
	RefreshedPage int
}

type anonymousComment struct {
	FullName string `form:"fullName" label:"Full name" validate:"required,min=2,max=50"`
	Email    string `form:"email" label:"Email" validate:"required,email"`
	Content  string `form:"content" label:"Comment" validate:"required,min=10,max=1000"`
}

type authorComment struct {
	Content string `form:"content" label:"Comment" validate:"required,min=10,max=1000"`
}

// CommentService validates and posts new comments, then refreshes the
// affected feed.
type CommentService struct {
	cms    driven.CMSClient
	now    func() time.Time
	logger *slog.Logger
}

// NewCommentService creates a CommentService. now may be nil to use time.Now.
func NewCommentService(cms driven.CMSClient, now func() time.Time, logger *slog.Logger) *CommentService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentService{cms: cms, now: now, logger: logger}
}

// CommentsOpen reports whether a post published at postDate still accepts
// comments at now.
func CommentsOpen(postDate, now time.Time) bool {
	return now.Sub(postDate) <= CommentWindow
}

// Submit validates in for actor, posts it and refreshes feed: page 1 for a
// top-level comment, the feed's current page for a reply. Submissions are not
// deduplicated; posting twice creates two comments.
func (s *CommentService) Submit(
	ctx context.Context,
	feed *CommentFeed,
	actor model.Actor,
	postDate time.Time,
	in model.CommentInput,
) (SubmitResult, error) {
	if !CommentsOpen(postDate, s.now()) {
		return SubmitResult{}, ErrCommentsClosed
	}

	content := strings.TrimSpace(in.Content)
	req := driven.CreateCommentRequest{
		PostID:   in.PostID,
		Content:  content,
		ParentID: in.ParentID,
	}

	var isAuthor bool
	switch a := actor.(type) {
	case model.AdminActor:
		isAuthor = true
		if TokenExpired(a.Token, s.now()) {
			return SubmitResult{}, ErrReauthenticate
		}
		if verr := forms.check(authorComment{Content: content}); verr != nil {
			return SubmitResult{}, verr
		}
		req.Token = a.Token
	case model.AnonymousActor:
		fields := anonymousComment{
			FullName: strings.TrimSpace(a.Name),
			Email:    strings.TrimSpace(a.Email),
			Content:  content,
		}
		if verr := forms.check(fields); verr != nil {
			return SubmitResult{}, verr
		}
		req.AuthorName = fields.FullName
		req.AuthorEmail = fields.Email
	default:
		return SubmitResult{}, fmt.Errorf("%w: unknown actor %T", ErrSubmitFailed, actor)
	}

	created, err := s.cms.CreateComment(ctx, req)
	if err != nil {
		if isAuthor && errors.Is(err, driven.ErrUnauthorized) {
			s.logger.Info("author token rejected", "post_id", in.PostID)
			return SubmitResult{}, ErrReauthenticate
		}
		s.logger.Error("failed to create comment", "post_id", in.PostID, "parent_id", in.ParentID, "error", err)
		return SubmitResult{}, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	s.logger.Info("comment created", "post_id", in.PostID, "comment_id", created.ID, "reply", in.IsReply())

	result := SubmitResult{Comment: created, Notice: MsgCommentThanks}
	if !isAuthor {
		result.Notice += " " + MsgModerationNote
	}

	if feed != nil {
		page := 1
		if in.IsReply() {
			page = feed.CurrentPage()
		}
		result.RefreshedPage = page
		if err := feed.Refresh(ctx, page); err != nil && !errors.Is(err, ErrStaleResult) {
			s.logger.Warn("comment posted but refresh failed", "post_id", in.PostID, "page", page, "error", err)
		}
	}

	return result, nil
}
