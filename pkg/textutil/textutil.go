// Package textutil cleans user supplied free text before it is stored or previewed.
package textutil

import (
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Ellipsis is appended to truncated previews.
const Ellipsis = "..."

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func strictPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// PlainText strips all markup from s and returns trimmed plain text. Entities produced by the
// sanitiser are decoded again so the stored value reads as the user typed it.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	cleaned := strictPolicy().Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// IsBlank reports whether s has no visible text once markup and whitespace are removed.
func IsBlank(s string) bool {
	return PlainText(s) == ""
}

// Truncate returns at most limit runes of s, appending Ellipsis when anything was cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + Ellipsis
}
