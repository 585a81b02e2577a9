// Package sanitize cleans user-supplied text before it is stored.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	plain = bluemonday.StrictPolicy()
	rich  = richPolicy()
)

func richPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "u", "strong", "em", "p", "br", "ul", "ol", "li", "code", "pre", "h1", "h2", "h3")
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto", "tel")
	p.RequireParseableURLs(true)
	p.RequireNoFollowOnLinks(true)
	return p
}

// Text strips all markup and returns trimmed plain text.
func Text(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(plain.Sanitize(s)))
}

// HTML keeps a small allow-list of formatting tags and safe links.
func HTML(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(rich.Sanitize(s))
}
