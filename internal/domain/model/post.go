package model

import "time"

// Post is a CMS post with its HTML-rendered fields.
type Post struct {
	ID      int64
	Slug    string
	Title   string
	Content string
	Excerpt string
	Date    time.Time
	Link    string
}

// PostQuery selects a page of posts from one category.
type PostQuery struct {
	Category int
	TagID    int64 // 0 means no tag filter.
	Page     int
	PerPage  int
	OrderBy  string
	Order    string
}

// PostPage is one page of posts and the totals reported by the CMS.
type PostPage struct {
	Posts      []Post
	TotalPages int
	Total      int
}

// Tag is a CMS taxonomy term.
type Tag struct {
	ID   int64
	Slug string
	Name string
}

// Book is a post from the books category with its cover and store link pulled
// out of the body.
type Book struct {
	Post
	ImageURL  string
	AmazonURL string
}
