package screen

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Raw names accepted for screening: letters plus space, hyphen, period,
// comma and apostrophe, 2 to 50 runes once composed. Tabs and line breaks
// are rejected.
var nameShape = regexp.MustCompile(`^[\p{L}\p{M} .,'-]+$`)

const (
	minNameRunes = 2
	maxNameRunes = 50
)

// IsValidName is the upstream shape check every raw name passes before it
// is screened or stored.
func IsValidName(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	text = norm.NFC.String(text)
	if n := utf8.RuneCountInString(text); n < minNameRunes || n > maxNameRunes {
		return false
	}
	if !nameShape.MatchString(text) {
		return false
	}
	return strings.IndexFunc(text, unicode.IsLetter) >= 0
}

// IsValidID rejects non-positive identifiers.
func IsValidID(id int64) bool { return id > 0 }
