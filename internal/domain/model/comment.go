package model

import "time"

// CommentRecord is a flat comment as returned by the CMS comments endpoint.
// Parent is 0 for root comments.
type CommentRecord struct {
	ID          int64
	AuthorName  string
	AuthorEmail string
	Content     string // Rendered HTML.
	Date        time.Time
	Parent      int64
	Post        int64
}

// IsRoot reports whether the comment has no parent.
func (c CommentRecord) IsRoot() bool {
	return c.Parent == 0
}

// CommentNode is a CommentRecord with its reconstructed replies.
// Children keep the order the CMS returned them in.
type CommentNode struct {
	CommentRecord
	Children []*CommentNode
	Expanded bool // Display only; never set by assembly.
}

// CommentPage is one server-side page of comments plus the pagination totals
// reported in the response headers.
type CommentPage struct {
	Records    []CommentRecord
	TotalPages int
	Total      int
}

// CommentInput carries the validated fields of a new comment or reply.
// ParentID is 0 for a top-level comment.
type CommentInput struct {
	PostID   int64
	ParentID int64
	FullName string
	Email    string
	Content  string
}

// IsReply reports whether the input targets an existing comment.
func (in CommentInput) IsReply() bool {
	return in.ParentID != 0
}
