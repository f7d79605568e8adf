// Package screen matches person names against a sanctions watchlist.
package screen

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopWords are honorifics and particles dropped during tokenization.
var stopWords = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "miss": {}, "dr": {}, "prof": {}, "sir": {},
	"the": {}, "and": {}, "of": {}, "to": {}, "a": {}, "an": {}, "jr": {}, "sr": {},
}

// IsStopWord reports whether a lowercased token is dropped by Tokenize.
func IsStopWord(token string) bool {
	_, ok := stopWords[token]
	return ok
}

// Normalize decomposes text (NFKD) and removes all combining marks,
// so accented Latin letters collapse to their base letter.
func Normalize(text string) string {
	// Chains carry state, so one is built per call.
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, _ := transform.String(t, text)
	return out
}

// Clean trims and lowercases text and deletes every rune outside
// [a-z], space, hyphen and apostrophe. Runs of spaces are left as-is.
// Spaces exposed at the edges by the deletion are trimmed too, which keeps
// Clean idempotent.
func Clean(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	return strings.Trim(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r == ' ', r == '-', r == '\'':
			return r
		default:
			return -1
		}
	}, text), " ")
}

// Tokenize splits on whitespace, drops stop-words and duplicates, and
// returns the remaining tokens sorted ascending.
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if IsStopWord(f) {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Preprocess returns the canonical form of a raw name. It is the form
// stored next to every watchlist entry and the form compared at verification.
func Preprocess(raw string) string {
	return strings.Join(Tokenize(Clean(Normalize(raw))), " ")
}
