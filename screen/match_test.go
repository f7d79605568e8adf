package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func osamaWatchlist() []Candidate {
	return []Candidate{{ID: "1", Name: "Osama Bin Laden", Canonical: Preprocess("Osama Bin Laden")}}
}

func TestVerifySanctionedVariants(t *testing.T) {
	for _, variant := range []string{
		"Osama Bin Laden",
		"Ben Osama Ladn",
		"Laden Osama Bin",
		"to the Mr. Osama Bin Laden",
	} {
		t.Run(variant, func(t *testing.T) {
			res := Verify(variant, osamaWatchlist())
			require.True(t, res.IsSanctioned)
			assert.Equal(t, "Osama Bin Laden", res.SanctionedName)
			assert.Equal(t, "1", res.EntryID)
			require.NotNil(t, res.MetricVector)
			assert.True(t, Decide(*res.MetricVector))
			assert.Empty(t, res.Msg)
		})
	}
}

func TestVerifyNoMatch(t *testing.T) {
	res := Verify("John Doe", osamaWatchlist())
	assert.False(t, res.IsSanctioned)
	assert.Equal(t, MsgNotFound, res.Msg)
	assert.Nil(t, res.MetricVector)
	assert.Empty(t, res.SanctionedName)
}

func TestVerifyInvalidInputSkipsScoring(t *testing.T) {
	scored := 0
	m := Matcher{Trace: func(string, Candidate, MetricVector, bool) { scored++ }}
	for _, raw := range []string{"", "   ", "x", "R2-D2", "<script>"} {
		res := m.Verify(raw, osamaWatchlist())
		assert.False(t, res.IsSanctioned, raw)
		assert.Equal(t, MsgInvalidName, res.Msg, raw)
	}
	assert.Zero(t, scored)
}

func TestVerifyEmptyWatchlist(t *testing.T) {
	for _, raw := range []string{"Osama Bin Laden", "John Doe"} {
		res := Verify(raw, nil)
		assert.False(t, res.IsSanctioned)
		assert.Equal(t, MsgNotFound, res.Msg)
	}
}

func TestVerifyFirstMatchWins(t *testing.T) {
	list := []Candidate{
		{ID: "7", Name: "Jane Roe", Canonical: Preprocess("Jane Roe")},
		{ID: "8", Name: "Osama Bin Laden", Canonical: Preprocess("Osama Bin Laden")},
		{ID: "9", Name: "Usama bin Ladin", Canonical: Preprocess("Usama bin Ladin")},
	}
	var seen []string
	m := Matcher{Trace: func(_ string, c Candidate, _ MetricVector, _ bool) { seen = append(seen, c.ID) }}
	res := m.Verify("Osama Bin Laden", list)
	require.True(t, res.IsSanctioned)
	assert.Equal(t, "8", res.EntryID)
	assert.Equal(t, []string{"7", "8"}, seen)
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name  string
		mv    MetricVector
		want  bool
		fired []string
	}{
		{"nothing", MetricVector{Jaro: 0.5, Jaccard: 0.1, PhoneticMatches: 1, LevenshteinNorm: 0.4}, false, nil},
		{"jaro without jaccard", MetricVector{Jaro: 0.95, Jaccard: 0.6}, false, nil},
		{"jaccard without jaro", MetricVector{Jaro: 0.89, Jaccard: 0.9}, false, nil},
		{"jaro and jaccard", MetricVector{Jaro: 0.90, Jaccard: 0.61}, true, []string{"jaro-winkler+jaccard"}},
		{"phonetic", MetricVector{PhoneticMatches: 2}, true, []string{"phonetic"}},
		{"levenshtein boundary", MetricVector{LevenshteinNorm: 0.85}, true, []string{"levenshtein"}},
		{"all", MetricVector{Jaro: 1, Jaccard: 1, PhoneticMatches: 3, LevenshteinNorm: 1}, true,
			[]string{"jaro-winkler+jaccard", "phonetic", "levenshtein"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.mv))
			assert.Equal(t, tc.fired, ExplainDecision(tc.mv))
		})
	}
}

func TestScore(t *testing.T) {
	mv := Score("bin laden osama", "bin laden osama")
	assert.Equal(t, MetricVector{Jaro: 1, Jaccard: 1, PhoneticMatches: 3, LevenshteinNorm: 1}, mv)

	mv = Score("", "")
	assert.Equal(t, 1.0, mv.Jaro)
	assert.Equal(t, 0.0, mv.Jaccard)
	assert.Equal(t, 0, mv.PhoneticMatches)
	assert.Equal(t, 1.0, mv.LevenshteinNorm)
}

func TestJaroJustBelowThresholdDoesNotMatch(t *testing.T) {
	mv := Score("ade binl osama", "bin laden osama")
	assert.Less(t, mv.Jaro, JaroThreshold)
	assert.Greater(t, mv.Jaccard, JaccardThreshold)
	assert.False(t, Decide(mv))

	res := Verify("Ade Binl Osama", osamaWatchlist())
	assert.False(t, res.IsSanctioned)
	assert.Equal(t, MsgNotFound, res.Msg)
}
