package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
)

var (
	// ErrUnauthorized is returned when the CMS rejects the bearer token (401/403).
	ErrUnauthorized = errors.New("cms rejected credentials")

	// ErrNotFound is returned when the requested CMS resource does not exist.
	ErrNotFound = errors.New("cms resource not found")

	// ErrMalformedResponse is returned when a response cannot be decoded or lacks
	// the pagination headers the caller depends on.
	ErrMalformedResponse = errors.New("malformed cms response")
)

// StatusError reports a non-2xx response from an external HTTP API.
// Message carries the API's own error message when one was returned.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// CreateCommentRequest is the body posted to the CMS comments endpoint.
// AuthorName and AuthorEmail are omitted for signed-in authors; ParentID 0
// creates a top-level comment.
type CreateCommentRequest struct {
	PostID      int64
	Content     string
	AuthorName  string
	AuthorEmail string
	ParentID    int64
	Token       string // Bearer token; empty for anonymous visitors.
}

// CMSClient defines the driven port for the WordPress content API.
type CMSClient interface {
	// ListComments returns one page of comments for a post ordered by date,
	// newest first, along with the totals from the pagination headers.
	ListComments(ctx context.Context, postID int64, page, perPage int) (model.CommentPage, error)
	// CreateComment posts a new comment or reply.
	CreateComment(ctx context.Context, req CreateCommentRequest) (model.CommentRecord, error)

	// ListPosts returns one page of posts matching the query.
	ListPosts(ctx context.Context, q model.PostQuery) (model.PostPage, error)
	// GetPost returns a single post. Returns ErrNotFound if it does not exist.
	GetPost(ctx context.Context, id int64) (*model.Post, error)
	// FindTagBySlug returns the tag with the given slug, or (nil, nil) when none exists.
	FindTagBySlug(ctx context.Context, slug string) (*model.Tag, error)
}
