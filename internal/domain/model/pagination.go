package model

// PaginationCursor tracks the position over server-paginated comments.
// CurrentPage is 1-based and never exceeds TotalPages.
type PaginationCursor struct {
	CurrentPage   int
	TotalPages    int
	TotalComments int // Roots and replies, as reported by the CMS.
	PerPage       int
}

// NewPaginationCursor returns a cursor positioned on page 1 of 1.
func NewPaginationCursor(perPage int) PaginationCursor {
	return PaginationCursor{
		CurrentPage: 1,
		TotalPages:  1,
		PerPage:     perPage,
	}
}

// Clamp returns a copy with CurrentPage held within [1, TotalPages].
// TotalPages of 0 (a post with no comments) is treated as 1.
func (c PaginationCursor) Clamp() PaginationCursor {
	if c.TotalPages < 1 {
		c.TotalPages = 1
	}
	if c.CurrentPage < 1 {
		c.CurrentPage = 1
	}
	if c.CurrentPage > c.TotalPages {
		c.CurrentPage = c.TotalPages
	}
	return c
}

// HasMore reports whether another page can be requested.
func (c PaginationCursor) HasMore() bool {
	return c.CurrentPage < c.TotalPages
}
