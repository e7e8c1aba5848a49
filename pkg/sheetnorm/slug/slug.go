// Package slug turns free-text labels into column-safe identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Total is the slug used for missing or empty labels.
const Total = "total"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Make lower-cases s, decomposes it (NFKD), drops every non-ASCII rune,
// collapses runs of other characters into "_" and trims "_" from both ends.
// An empty result becomes Total.
func Make(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	ascii, _, err := transform.String(t, s)
	if err != nil {
		ascii = s
	}
	out := strings.Trim(nonAlnum.ReplaceAllString(ascii, "_"), "_")
	if out == "" {
		return Total
	}
	return out
}

// MakePtr is Make for an optional label; nil yields Total.
func MakePtr(s *string) string {
	if s == nil {
		return Total
	}
	return Make(*s)
}
