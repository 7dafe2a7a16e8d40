package model

import (
	"strings"
	"time"
)

// MediaShow is a podcast or programme listed under the media menu. TagID links
// the show to its episodes; 0 means the CMS has no tag for the slug.
type MediaShow struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	TagID int64  `json:"tagId"`
	Slug  string `json:"slug"`
	Link  string `json:"link"`
}

// IsFlagship reports whether the show is one of the author's own shows, which
// always use the first image set.
func (s MediaShow) IsFlagship() bool {
	return strings.HasSuffix(s.Title, "SHOW")
}

// MediaEpisode is one episode post of a show.
type MediaEpisode struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Date       time.Time `json:"date"`
	Link       string    `json:"link"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	YouTubeURL string    `json:"youtubeUrl,omitempty"`
	Color      string    `json:"color,omitempty"`
}

// ImageSetIndex picks which of n banner image sets the show page uses.
// Flagship shows always use the first set; others are spread by tag id.
func (s MediaShow) ImageSetIndex(n int) int {
	if n <= 0 || s.IsFlagship() {
		return 0
	}
	id := s.TagID
	if id < 0 {
		id = -id
	}
	return int(id % int64(n))
}
