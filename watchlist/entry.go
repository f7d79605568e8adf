// Package watchlist stores sanctioned names together with their canonical
// form and hands point-in-time snapshots to the matcher.
package watchlist

import (
	"strconv"
	"strings"

	"github.com/pedrohavay/namescreen/screen"
)

// KeyPrefix namespaces entry keys, e.g. "sanctioned:42".
const KeyPrefix = "sanctioned:"

// Entry is one sanctioned name. PreprocessedName is always screen.Preprocess(Name)
// computed at write time.
type Entry struct {
	ID               int64  `json:"id" msgpack:"id" yaml:"id"`
	Name             string `json:"name" msgpack:"raw_name" yaml:"name"`
	PreprocessedName string `json:"preprocessedName" msgpack:"preprocessed_name" yaml:"preprocessed_name"`
	Signature        string `json:"signature,omitempty" msgpack:"signature,omitempty" yaml:"signature,omitempty"`
}

// NewEntry builds an entry and computes its canonical form.
func NewEntry(id int64, name string) Entry {
	return Entry{ID: id, Name: name, PreprocessedName: screen.Preprocess(name)}
}

// Key returns the storage key of an entry id.
func Key(id int64) string { return KeyPrefix + strconv.FormatInt(id, 10) }

// ParseKey is the inverse of Key.
func ParseKey(key string) (int64, bool) {
	if !strings.HasPrefix(key, KeyPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(key, KeyPrefix), 10, 64)
	if err != nil || !screen.IsValidID(id) {
		return 0, false
	}
	return id, true
}

// Candidate converts the entry for the matcher.
func (e Entry) Candidate() screen.Candidate {
	return screen.Candidate{ID: strconv.FormatInt(e.ID, 10), Name: e.Name, Canonical: e.PreprocessedName}
}

// Clean trims the raw name and recomputes a missing canonical form.
func (e *Entry) Clean() {
	e.Name = strings.TrimSpace(e.Name)
	if e.PreprocessedName == "" {
		e.PreprocessedName = screen.Preprocess(e.Name)
	}
}
