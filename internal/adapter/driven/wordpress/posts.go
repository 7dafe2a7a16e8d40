package wordpress

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ericfisherdev/authorsite/internal/domain/model"
)

type postJSON struct {
	ID      int64    `json:"id"`
	Slug    string   `json:"slug"`
	Link    string   `json:"link"`
	Date    string   `json:"date"`
	DateGMT string   `json:"date_gmt"`
	Title   rendered `json:"title"`
	Content rendered `json:"content"`
	Excerpt rendered `json:"excerpt"`
}

type tagJSON struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// ListPosts fetches one page of posts. Missing pagination headers are
// tolerated: totals are left at zero for the caller to fall back on.
func (c *Client) ListPosts(ctx context.Context, q model.PostQuery) (model.PostPage, error) {
	query := url.Values{}
	if q.Category != 0 {
		query.Set("categories", strconv.Itoa(q.Category))
	}
	if q.TagID != 0 {
		query.Set("tags", strconv.FormatInt(q.TagID, 10))
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(q.PerPage))
	}
	if q.OrderBy != "" {
		query.Set("orderby", q.OrderBy)
	}
	if q.Order != "" {
		query.Set("order", q.Order)
	}

	var raw []postJSON
	header, err := c.getJSON(ctx, "/posts", query, &raw)
	if err != nil {
		return model.PostPage{}, fmt.Errorf("listing posts in category %d: %w", q.Category, err)
	}

	posts := make([]model.Post, 0, len(raw))
	for _, pj := range raw {
		posts = append(posts, mapPost(pj))
	}

	totalPages, _ := intHeader(header, headerTotalPages)
	total, _ := intHeader(header, headerTotal)

	return model.PostPage{Posts: posts, TotalPages: totalPages, Total: total}, nil
}

// GetPost fetches a single post by id.
func (c *Client) GetPost(ctx context.Context, id int64) (*model.Post, error) {
	var pj postJSON
	if _, err := c.getJSON(ctx, "/posts/"+strconv.FormatInt(id, 10), nil, &pj); err != nil {
		return nil, fmt.Errorf("getting post %d: %w", id, err)
	}
	post := mapPost(pj)
	return &post, nil
}

// FindTagBySlug looks up a tag by slug. It returns (nil, nil) when the CMS
// has no such tag.
func (c *Client) FindTagBySlug(ctx context.Context, slug string) (*model.Tag, error) {
	var raw []tagJSON
	if _, err := c.getJSON(ctx, "/tags", url.Values{"slug": {slug}}, &raw); err != nil {
		return nil, fmt.Errorf("finding tag %q: %w", slug, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return &model.Tag{ID: raw[0].ID, Slug: raw[0].Slug, Name: raw[0].Name}, nil
}

func mapPost(pj postJSON) model.Post {
	return model.Post{
		ID:      pj.ID,
		Slug:    pj.Slug,
		Title:   pj.Title.Rendered,
		Content: pj.Content.Rendered,
		Excerpt: pj.Excerpt.Rendered,
		Date:    parseWPTime(pj.DateGMT, pj.Date),
		Link:    pj.Link,
	}
}
