package wordpress

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
	"github.com/ericfisherdev/authorsite/internal/domain/port/driven"
)

// Pagination headers sent with every collection response.
const (
	headerTotalPages = "X-WP-TotalPages"
	headerTotal      = "X-WP-Total"
)

type commentJSON struct {
	ID         int64    `json:"id"`
	Post       int64    `json:"post"`
	Parent     int64    `json:"parent"`
	AuthorName string   `json:"author_name"`
	Date       string   `json:"date"`
	DateGMT    string   `json:"date_gmt"`
	Content    rendered `json:"content"`
}

type createCommentJSON struct {
	Post        int64  `json:"post"`
	Content     string `json:"content"`
	AuthorName  string `json:"author_name,omitempty"`
	AuthorEmail string `json:"author_email,omitempty"`
	Parent      int64  `json:"parent,omitempty"`
}

// ListComments fetches one page of comments for postID, newest first. Both
// pagination headers are required; a response without them is malformed.
func (c *Client) ListComments(ctx context.Context, postID int64, page, perPage int) (model.CommentPage, error) {
	query := url.Values{
		"post":     {strconv.FormatInt(postID, 10)},
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
		"orderby":  {"date"},
		"order":    {"desc"},
	}

	var raw []commentJSON
	header, err := c.getJSON(ctx, "/comments", query, &raw)
	if err != nil {
		return model.CommentPage{}, fmt.Errorf("listing comments for post %d (page %d): %w", postID, page, err)
	}

	totalPages, ok := intHeader(header, headerTotalPages)
	if !ok {
		return model.CommentPage{}, fmt.Errorf("listing comments for post %d: %w: missing %s", postID, driven.ErrMalformedResponse, headerTotalPages)
	}
	total, ok := intHeader(header, headerTotal)
	if !ok {
		return model.CommentPage{}, fmt.Errorf("listing comments for post %d: %w: missing %s", postID, driven.ErrMalformedResponse, headerTotal)
	}

	records := make([]model.CommentRecord, 0, len(raw))
	for _, cj := range raw {
		records = append(records, mapComment(cj))
	}

	return model.CommentPage{Records: records, TotalPages: totalPages, Total: total}, nil
}

// CreateComment posts a comment. Signed-in authors send only the content and
// their bearer token; the CMS fills in their identity.
func (c *Client) CreateComment(ctx context.Context, req driven.CreateCommentRequest) (model.CommentRecord, error) {
	body := createCommentJSON{
		Post:    req.PostID,
		Content: req.Content,
		Parent:  req.ParentID,
	}
	if req.Token == "" {
		body.AuthorName = req.AuthorName
		body.AuthorEmail = req.AuthorEmail
	}

	var created commentJSON
	if err := c.postJSON(ctx, c.baseURL+"/comments", req.Token, body, &created); err != nil {
		return model.CommentRecord{}, fmt.Errorf("creating comment on post %d: %w", req.PostID, err)
	}

	record := mapComment(created)
	if req.Token == "" {
		record.AuthorEmail = req.AuthorEmail
	}
	return record, nil
}

func mapComment(cj commentJSON) model.CommentRecord {
	return model.CommentRecord{
		ID:         cj.ID,
		AuthorName: cj.AuthorName,
		Content:    cj.Content.Rendered,
		Date:       parseWPTime(cj.DateGMT, cj.Date),
		Parent:     cj.Parent,
		Post:       cj.Post,
	}
}
