package web

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdRenderer    goldmark.Markdown
	htmlSanitizer *bluemonday.Policy
)

func init() {
	mdRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	// CMS bodies use figures and captions on top of the usual UGC markup.
	htmlSanitizer = bluemonday.UGCPolicy()
	htmlSanitizer.AllowElements("figure", "figcaption")
	htmlSanitizer.AllowAttrs("class").OnElements("figure", "img", "p", "span", "div")
}

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// SanitizeHTML strips scripts, event handlers and anything else outside the
// allowed markup from CMS-rendered HTML.
func SanitizeHTML(src string) string {
	if src == "" {
		return ""
	}
	return htmlSanitizer.Sanitize(src)
}
