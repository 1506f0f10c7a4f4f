// Package htmlsanitize sanitizes user and model generated HTML before it is
// stored or rendered. Community posts, school and coach bios, and generated
// content all pass through here.
package htmlsanitize

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	// Rich text beyond the UGC baseline
	p.AllowElements("u", "s", "sub", "sup", "mark")

	// Tables keep layout attributes so rendered markdown survives
	tableElements := []string{"table", "thead", "tbody", "tfoot", "tr", "th", "td"}
	p.AllowAttrs("class").OnElements(tableElements...)
	p.AllowAttrs("style").OnElements(tableElements...)
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")

	return p
}

// Sanitize strips dangerous markup from an HTML fragment, preserving the
// formatting elements the feed and bio pages render.
func Sanitize(html string) string {
	return policy.Sanitize(html)
}

// SanitizeToHTML sanitizes and returns template.HTML ready for rendering.
func SanitizeToHTML(html string) template.HTML {
	return template.HTML(Sanitize(html))
}

// IsPlainText reports whether s contains no HTML tags. A bare < or > on its
// own (e.g. "5 < 10") still counts as plain text.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes plain text and wraps it in a paragraph, converting
// newlines to <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}

// PrepareForDisplay converts stored content to safe renderable HTML. Plain
// text is escaped and paragraph-wrapped; HTML is sanitized.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
