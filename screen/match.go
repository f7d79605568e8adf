package screen

import "strings"

// Decision thresholds. A candidate matches when any of the three rules fires.
const (
	JaroThreshold        = 0.90 // jaro >= JaroThreshold, together with JaccardThreshold
	JaccardThreshold     = 0.6  // jaccard > JaccardThreshold
	PhoneticThreshold    = 2    // phonetic matches >= PhoneticThreshold
	LevenshteinThreshold = 0.85 // normalized levenshtein >= LevenshteinThreshold
)

// Result messages.
const (
	MsgInvalidName = "Invalid name format"
	MsgNotFound    = "Name not found in sanctioned list"
)

// Candidate is one watchlist name handed to the matcher. ID is opaque.
type Candidate struct {
	ID        string
	Name      string
	Canonical string
}

// MetricVector holds the four similarity signals for one pair of names.
type MetricVector struct {
	Jaro            float64 `json:"jaro"`
	Jaccard         float64 `json:"jaccard"`
	PhoneticMatches int     `json:"phoneticMatches"`
	LevenshteinNorm float64 `json:"levenshteinNorm"`
}

// MatchResult is either a match (IsSanctioned) carrying the matched entry and
// its metrics, or a no-match carrying a message.
type MatchResult struct {
	IsSanctioned   bool   `json:"isSanctioned"`
	EntryID        string `json:"id,omitempty"`
	SanctionedName string `json:"sanctionedName,omitempty"`
	*MetricVector
	Msg string `json:"msg,omitempty"`
}

// NoMatch builds a negative result.
func NoMatch(msg string) MatchResult { return MatchResult{Msg: msg} }

// Score computes the metric vector between two canonical names.
func Score(canonicalInput, canonicalCandidate string) MetricVector {
	return MetricVector{
		Jaro:            JaroWinkler(canonicalInput, canonicalCandidate),
		Jaccard:         Jaccard(canonicalInput, canonicalCandidate),
		PhoneticMatches: PhoneticMatches(strings.Fields(canonicalInput), strings.Fields(canonicalCandidate)),
		LevenshteinNorm: NormalizedLevenshtein(canonicalInput, canonicalCandidate),
	}
}

// Decide applies the match rule to a metric vector.
func Decide(mv MetricVector) bool {
	return len(ExplainDecision(mv)) > 0
}

// ExplainDecision lists the rules that fired for mv, in rule order.
func ExplainDecision(mv MetricVector) []string {
	var fired []string
	if mv.Jaro >= JaroThreshold && mv.Jaccard > JaccardThreshold {
		fired = append(fired, "jaro-winkler+jaccard")
	}
	if mv.PhoneticMatches >= PhoneticThreshold {
		fired = append(fired, "phonetic")
	}
	if mv.LevenshteinNorm >= LevenshteinThreshold {
		fired = append(fired, "levenshtein")
	}
	return fired
}

// Tracer observes every scored pair, e.g. for audit logging.
type Tracer func(input string, c Candidate, mv MetricVector, matched bool)

// Matcher verifies names against a candidate list. The zero value is ready
// to use and safe for concurrent use as long as Trace is.
type Matcher struct {
	Trace Tracer
}

// Verify screens a raw name against candidates, returning the first match in
// slice order.
func (m Matcher) Verify(raw string, candidates []Candidate) MatchResult {
	if !IsValidName(raw) {
		return NoMatch(MsgInvalidName)
	}
	input := Preprocess(raw)
	for _, c := range candidates {
		mv := Score(input, c.Canonical)
		matched := Decide(mv)
		if m.Trace != nil {
			m.Trace(input, c, mv, matched)
		}
		if matched {
			return MatchResult{
				IsSanctioned:   true,
				EntryID:        c.ID,
				SanctionedName: c.Name,
				MetricVector:   &mv,
			}
		}
	}
	return NoMatch(MsgNotFound)
}

// Verify screens raw against candidates with a zero Matcher.
func Verify(raw string, candidates []Candidate) MatchResult {
	return Matcher{}.Verify(raw, candidates)
}
