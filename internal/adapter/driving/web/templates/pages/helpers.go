// Package pages holds the page-level templ components of the site.
package pages

import "strconv"

var shareOptions = []struct{ value, label string }{
	{"yes-full", "Yes, share with my full name"},
	{"yes-initials", "Yes, share with my initials only"},
	{"yes-anonymous", "Yes, share anonymously"},
	{"no", "No, keep it private"},
}

func commentAnchor(id int64) string {
	return "comment-" + strconv.FormatInt(id, 10)
}

func replyLabel(n int) string {
	if n == 1 {
		return "1 reply"
	}
	return strconv.Itoa(n) + " replies"
}
