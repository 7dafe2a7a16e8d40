// Package htmlcontent extracts media links from, and cleans up, the rendered
// HTML bodies returned by the WordPress REST API. The helpers are
// pattern-based and tuned for block-editor output; they give reasonable
// results for well-formed WordPress HTML and make no promises beyond that.
package htmlcontent

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	leadImageRe  = regexp.MustCompile(`<figure class="wp-block-image size-large">[\s\S]*?<img[\s\S]*?src="(.*?)"[\s\S]*?</figure>`)
	bookImageRe  = regexp.MustCompile(`<figure class="wp-block-image size-full">[\s\S]*?</figure>`)
	bookAmazonRe = regexp.MustCompile(`<p><a href="(https://www\.amazon\.com/[^"]+)">[^<]+</a></p>`)
	srcRe        = regexp.MustCompile(`src="([^"]+)"`)
	eCopyRe      = regexp.MustCompile(`<p>Click here to get your e-copy or paper copy of</p>`)
	blankLinesRe = regexp.MustCompile(`\n\s*\n\s*\n`)
	youTubeRe    = regexp.MustCompile(`src="([^"]+youtube[^"]+)"`)
	amazonHrefRe = regexp.MustCompile(`href="(https?://(?:www\.)?amazon\.com/[^"]+)"`)
	lastFigureRe = regexp.MustCompile(`(?i)(<figure[^>]*>[^<]*<img[^>]*src="([^"]*)"[^>]*>[^<]*</figure>)[^<]*$`)
	lastAmazonRe = regexp.MustCompile(`(?i)(https?://(?:www\.)?amazon\.com/[^\s<>"'\n]+)[^\w]*$`)
	tagRe        = regexp.MustCompile(`</?[^>]+(>|$)`)
)

// ExtractAndRemoveImage finds the first large block-editor image and returns
// its source URL together with content minus that figure. imageURL is empty
// and content is unchanged when there is no such image.
func ExtractAndRemoveImage(content string) (imageURL, rest string) {
	m := leadImageRe.FindStringSubmatch(content)
	if m == nil || m[1] == "" {
		return "", content
	}
	return m[1], strings.Replace(content, m[0], "", 1)
}

// BookContent is a book post body split into its cover, store link and the
// remaining description.
type BookContent struct {
	ImageURL  string
	AmazonURL string
	Content   string
}

// FormatBookContent pulls the full-size cover figure and the Amazon purchase
// paragraph out of a book post, drops the "Click here to get your e-copy"
// lead-in left behind, and collapses the blank lines the removals create.
func FormatBookContent(content string) BookContent {
	var out BookContent
	body := content

	if fig := bookImageRe.FindString(body); fig != "" {
		if src := srcRe.FindStringSubmatch(fig); src != nil {
			out.ImageURL = src[1]
		}
		body = strings.Replace(body, fig, "", 1)
	}

	if m := bookAmazonRe.FindStringSubmatch(body); m != nil {
		out.AmazonURL = m[1]
		body = strings.Replace(body, m[0], "", 1)
	}

	if loc := eCopyRe.FindStringIndex(body); loc != nil {
		body = body[:loc[0]] + body[loc[1]:]
	}
	body = blankLinesRe.ReplaceAllString(body, "\n\n")
	out.Content = strings.TrimSpace(body)

	return out
}

// ExtractBottomImageAndLink removes a trailing Amazon URL and a trailing
// figure from content, returning the figure's image source and the URL.
func ExtractBottomImageAndLink(content string) (imageURL, linkURL, rest string) {
	rest = content

	// Both patterns are matched against the original content.
	figure := lastFigureRe.FindStringSubmatch(content)
	link := lastAmazonRe.FindStringSubmatch(content)

	if link != nil && link[1] != "" {
		linkURL = link[1]
		rest = strings.TrimSpace(strings.Replace(rest, link[1], "", 1))
	}
	if figure != nil && figure[2] != "" {
		imageURL = figure[2]
		rest = strings.TrimSpace(strings.Replace(rest, figure[1], "", 1))
	}

	return imageURL, linkURL, rest
}

// ExtractYouTubeURL returns the first src attribute that points at YouTube,
// usually an embed iframe, or "".
func ExtractYouTubeURL(content string) string {
	if m := youTubeRe.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return ""
}

// ExtractAmazonURL returns the first amazon.com href in content, or "".
func ExtractAmazonURL(content string) string {
	if m := amazonHrefRe.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return ""
}

// StripTags removes anything that looks like a tag and trims the result.
// Entities are left encoded; see TextContent for a decoded plain-text view.
func StripTags(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}

// DecodeEntities replaces HTML character references with the characters they
// stand for, e.g. "&#8217;" with "’".
func DecodeEntities(s string) string {
	return html.UnescapeString(s)
}

// ToTitleCase lower-cases s and upper-cases the first letter of every
// space-separated word.
func ToTitleCase(s string) string {
	words := strings.Split(strings.ToLower(s), " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Truncate shortens s to max runes and appends "..." when it was longer.
func Truncate(s string, max int) string {
	if max < 0 {
		max = 0
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// Initials returns up to two upper-case initials for a commenter's avatar,
// or "??" for a blank name.
func Initials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "??"
	}
	first, _ := utf8.DecodeRuneInString(fields[0])
	if len(fields) == 1 {
		return strings.ToUpper(string(first))
	}
	second, _ := utf8.DecodeRuneInString(fields[1])
	return strings.ToUpper(string(first) + string(second))
}

var avatarClasses = []string{
	"bg-blue-500",
	"bg-green-500",
	"bg-yellow-500",
	"bg-purple-500",
	"bg-pink-500",
	"bg-indigo-500",
	"bg-red-500",
	"bg-teal-500",
}

// AvatarClass picks a stable background class for a commenter's avatar from
// the sum of the code points in their name.
func AvatarClass(name string) string {
	var sum int
	for _, r := range name {
		sum += int(r)
	}
	return avatarClasses[sum%len(avatarClasses)]
}
