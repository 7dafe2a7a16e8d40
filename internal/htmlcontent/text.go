package htmlcontent

import (
	"strings"

	"golang.org/x/net/html"
)

// TextContent returns the text of an HTML fragment with tags dropped and
// entities decoded, the way a browser reports an element's textContent.
// Script and style bodies are skipped. Runs of whitespace collapse to a
// single space.
func TextContent(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))

	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way the text so far is the result.
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "br", "p", "div", "li":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li":
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// Excerpt returns the plain text of fragment cut to max runes.
func Excerpt(fragment string, max int) string {
	return Truncate(TextContent(fragment), max)
}
