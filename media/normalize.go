package media

import (
	"regexp"
	"strings"
)

var (
	dashes      = regexp.MustCompile(`[–—-]`)
	yearInParen = regexp.MustCompile(`\(\d{4}\)`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// NormalizeTitle derives the dedup key of a title: lower-cased, dashes and "(yyyy)" removed, whitespace collapsed.
// It is idempotent.
func NormalizeTitle(title string) string {
	s := strings.ToLower(title)
	s = dashes.ReplaceAllString(s, "")
	// removing one year can expose another, as in "(20(2024)24)"
	for yearInParen.MatchString(s) {
		s = yearInParen.ReplaceAllString(s, "")
	}
	s = whitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
