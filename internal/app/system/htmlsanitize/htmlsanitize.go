// Package htmlsanitize cleans user-supplied text before it is stored.
//
// Names, titles and locations are plain text: every tag is stripped.
// Descriptions may carry a small amount of formatting and go through the
// UGC policy, which drops scripts, event handlers and unsafe URLs.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	once   sync.Once
	strict *bluemonday.Policy
	ugc    *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	once.Do(func() {
		strict = bluemonday.StrictPolicy()

		ugc = bluemonday.UGCPolicy()
		ugc.AddTargetBlankToFullyQualifiedLinks(true)
	})
	return strict, ugc
}

// PlainText strips all markup and returns trimmed text. Entities produced by
// the sanitiser are decoded again so "Tom & Jerry" round-trips unchanged.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	p, _ := policies()
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
}

// Sanitize keeps safe formatting and removes anything that could run code.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	_, p := policies()
	return strings.TrimSpace(p.Sanitize(s))
}

// IsPlainText reports whether s contains no tag-like markup.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}
