package screen

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/antzucaro/matchr"
)

// Jaro-Winkler tuning: the prefix boost applies from boostThreshold on and
// looks at no more than maxPrefix leading runes.
const (
	boostThreshold = 0.7
	prefixScale    = 0.1
	maxPrefix      = 4
)

// JaroWinkler returns the Jaro-Winkler similarity of a and b in [0, 1].
// Identical strings, including two empty ones, score 1.0. The score is
// symmetric and counts half transpositions as fractions.
func JaroWinkler(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	m, t, prefix := jaroMatches(ra, rb)
	if m == 0 {
		return 0.0
	}
	fm := float64(m)
	j := (fm/float64(len(ra)) + fm/float64(len(rb)) + (fm-float64(t)/2)/fm) / 3
	if j < boostThreshold {
		return j
	}
	return j + prefixScale*float64(prefix)*(1-j)
}

// jaroMatches scans the shorter string against the longer one and returns
// the matching rune count, the matched positions that disagree in order and
// the common prefix length.
func jaroMatches(a, b []rune) (matches, transpositions, prefix int) {
	long, short := b, a
	if len(a) > len(b) {
		long, short = a, b
	}
	window := len(long)/2 - 1
	if window < 0 {
		window = 0
	}
	matchIdx := make([]int, len(short))
	used := make([]bool, len(long))
	for i, c := range short {
		matchIdx[i] = -1
		lo, hi := i-window, i+window+1
		if lo < 0 {
			lo = 0
		}
		if hi > len(long) {
			hi = len(long)
		}
		for x := lo; x < hi; x++ {
			if !used[x] && c == long[x] {
				matchIdx[i] = x
				used[x] = true
				matches++
				break
			}
		}
	}

	ms1 := make([]rune, 0, matches)
	for i, x := range matchIdx {
		if x != -1 {
			ms1 = append(ms1, short[i])
		}
	}
	k := 0
	for x, ok := range used {
		if !ok {
			continue
		}
		if ms1[k] != long[x] {
			transpositions++
		}
		k++
	}

	for i := 0; i < len(short) && i < maxPrefix; i++ {
		if a[i] != b[i] {
			break
		}
		prefix++
	}
	return matches, transpositions, prefix
}

// JaroWinklerPtr is JaroWinkler for values that may be absent; an absent
// side scores 0.0.
func JaroWinklerPtr(a, b *string) float64 {
	if a == nil || b == nil {
		return 0.0
	}
	return JaroWinkler(*a, *b)
}

// Jaccard returns the Jaccard index of the character bigram sets of a and b
// with all whitespace removed. Either side shorter than two runes scores 0.0.
func Jaccard(a, b string) float64 {
	ca, cb := stripSpace(a), stripSpace(b)
	if utf8.RuneCountInString(ca) < 2 || utf8.RuneCountInString(cb) < 2 {
		return 0.0
	}
	ba, bb := bigrams(ca), bigrams(cb)
	inter := 0
	for g := range ba {
		if _, ok := bb[g]; ok {
			inter++
		}
	}
	union := len(ba) + len(bb) - inter
	return float64(inter) / float64(union)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func bigrams(s string) map[string]struct{} {
	rs := []rune(s)
	out := make(map[string]struct{}, len(rs))
	for i := 0; i+1 < len(rs); i++ {
		out[string(rs[i:i+2])] = struct{}{}
	}
	return out
}

// PhoneticCode returns the primary Double Metaphone code of a token.
func PhoneticCode(token string) string {
	primary, _ := matchr.DoubleMetaphone(token)
	return primary
}

// PhoneticMatches counts input tokens whose primary phonetic code equals the
// code of at least one candidate token. Each input token counts once.
func PhoneticMatches(input, candidate []string) int {
	codes := make([]string, len(candidate))
	for i, t := range candidate {
		codes[i] = PhoneticCode(t)
	}
	count := 0
	for _, t := range input {
		code := PhoneticCode(t)
		for _, c := range codes {
			if code == c {
				count++
				break
			}
		}
	}
	return count
}

// LevenshteinDistance is the unit-cost edit distance between a and b.
func LevenshteinDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// NormalizedLevenshtein maps the edit distance into [0, 1] as
// 1 - distance/max(len(a), len(b)). Two empty strings score 1.0.
func NormalizedLevenshtein(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(LevenshteinDistance(a, b))/float64(maxLen)
}
