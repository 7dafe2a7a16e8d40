// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

import "strconv"

// NavItem is one entry of the site navigation.
type NavItem struct {
	Label  string
	Path   string
	Active bool
}

// Page holds the data every page layout needs.
type Page struct {
	SiteTitle   string
	Title       string
	Description string
	Nav         []NavItem
	CSRFToken   string
	User        *User // nil for visitors
	Flash       string
	Year        int
}

// User is the signed-in author shown in the header.
type User struct {
	DisplayName string
}

// Pager links the pages of a paginated listing. BasePath has no query string.
type Pager struct {
	Page       int
	TotalPages int
	BasePath   string
}

// HasPrev reports whether a previous page exists.
func (p Pager) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Pager) HasNext() bool { return p.Page < p.TotalPages }

// PrevPath is the link to the previous page.
func (p Pager) PrevPath() string { return p.BasePath + "?page=" + strconv.Itoa(p.Page-1) }

// NextPath is the link to the next page.
func (p Pager) NextPath() string { return p.BasePath + "?page=" + strconv.Itoa(p.Page+1) }

// PostCard is a blog post in a listing.
type PostCard struct {
	ID      int64
	Title   string
	Excerpt string // plain text
	Date    string
	Path    string
}

// BlogList is the blog index page.
type BlogList struct {
	Posts []PostCard
	Pager Pager
}

// Comment is one rendered comment with its replies nested under it.
type Comment struct {
	ID          int64
	Author      string
	Initials    string
	AvatarClass string
	Date        string
	ContentHTML string // sanitized
	Depth       int
	Replies     []Comment
	// Truncated is set when replies exist below the rendering depth limit.
	Truncated bool
}

// CommentFeed is the comment list of a post with its load more controls.
type CommentFeed struct {
	PostID      int64
	Comments    []Comment
	Total       int
	Shown       int
	HasMore     bool
	CanShowLess bool
	Loading     bool
	Error       string
	MorePath    string
	LessPath    string
	CSRFToken   string
}

// Form carries submitted values and per-field errors back to a form.
type Form struct {
	Values    map[string]string
	Errors    map[string]string
	Notice    string
	Error     string
	CSRFToken string
}

// Value returns the submitted value of field, or "".
func (f Form) Value(field string) string { return f.Values[field] }

// Err returns the error message for field, or "".
func (f Form) Err(field string) string { return f.Errors[field] }

// CommentForm is the form for a new comment or reply.
type CommentForm struct {
	Form
	Action    string
	Open      bool
	Closed    string // message shown instead of the form when not Open
	AdminName string // set when a signed-in author is commenting
}

// PostDetail is a blog post page.
type PostDetail struct {
	ID          int64
	Title       string
	Date        string
	ContentHTML string
	Feed        CommentFeed
	Form        CommentForm
}

// BookCard is a book in the listing.
type BookCard struct {
	ID        int64
	Title     string
	ImageURL  string
	AmazonURL string
	Path      string
}

// BookList is the books index page.
type BookList struct {
	Books []BookCard
	Total int
	Pager Pager
}

// BookDetail is a single book page.
type BookDetail struct {
	Title       string
	ImageURL    string
	AmazonURL   string
	ContentHTML string
}

// Episode is a show episode card.
type Episode struct {
	ID          int64
	Title       string
	Date        string
	Link        string
	ImageURL    string
	YouTubeURL  string
	Color       string
	ContentHTML string
}

// Show is a media show page.
type Show struct {
	Title     string
	Slug      string
	BannerURL string
	Episodes  []Episode
}

// Home is the landing page.
type Home struct {
	Tagline  string
	Blogs    []PostCard
	Episodes []Episode
	Error    string
}

// Contact is the contact page with its prayer, testimony, questions and
// booking forms. Kind selects which form is open.
type Contact struct {
	Kind    string
	Kinds   []ContactKind
	Contact Form
	Booking Form
}

// ContactKind is one selectable contact form.
type ContactKind struct {
	Value string
	Label string
}

// Login is the author sign-in page.
type Login struct {
	Form
	Next    string
	Expired bool
}

// Error is a full-page error.
type Error struct {
	Status  int
	Message string
}

// ShowLink is a show in the media index.
type ShowLink struct {
	Title string
	Path  string
}
