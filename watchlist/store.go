package watchlist

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pedrohavay/namescreen/screen"
)

var (
	ErrNotFound     = errors.New("watchlist: entry not found")
	ErrInvalidID    = errors.New("watchlist: invalid id")
	ErrInvalidName  = errors.New("watchlist: invalid name")
	ErrBadSignature = errors.New("watchlist: bad entry signature")
	ErrDuplicateID  = errors.New("watchlist: duplicate id")
)

// Store is an in-memory watchlist safe for concurrent use. Readers get
// copies, so a snapshot handed to the matcher never changes under it.
type Store struct {
	mu      sync.RWMutex
	entries map[int64]Entry
	ids     IDAllocator
	signer  *Signer
}

// NewStore creates an empty store. signer may be nil.
func NewStore(signer *Signer) *Store {
	if signer == nil {
		signer = NewSigner("")
	}
	return &Store{entries: map[int64]Entry{}, signer: signer}
}

// Add stores a new name under a freshly allocated id.
func (s *Store) Add(name string) (Entry, error) {
	name = strings.TrimSpace(name)
	if !screen.IsValidName(name) {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.signer.Sign(NewEntry(s.ids.Next(), name))
	s.entries[e.ID] = e
	return e, nil
}

// Get returns the entry with the given id.
func (s *Store) Get(id int64) (Entry, error) {
	if !screen.IsValidID(id) {
		return Entry{}, ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, Key(id))
	}
	return e, nil
}

// Update replaces the name of an existing entry and recomputes its
// canonical form.
func (s *Store) Update(id int64, name string) (Entry, error) {
	if !screen.IsValidID(id) {
		return Entry{}, ErrInvalidID
	}
	name = strings.TrimSpace(name)
	if !screen.IsValidName(name) {
		return Entry{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, Key(id))
	}
	e := s.signer.Sign(NewEntry(id, name))
	s.entries[id] = e
	return e, nil
}

// Delete removes an entry.
func (s *Store) Delete(id int64) error {
	if !screen.IsValidID(id) {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, Key(id))
	}
	delete(s.entries, id)
	return nil
}

// All returns every entry ordered by id.
func (s *Store) All() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Candidates returns a snapshot for screen.Verify, ordered by id.
func (s *Store) Candidates() []screen.Candidate {
	all := s.All()
	out := make([]screen.Candidate, len(all))
	for i, e := range all {
		out[i] = e.Candidate()
	}
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Load inserts previously stored entries, keeping their ids, and re-seeds the
// id allocator from the highest id. Entries with invalid ids or names, ids
// repeated in the batch or already stored, and entries failing signature
// verification abort the load and leave the store untouched. entries is not
// modified.
func (s *Store) Load(entries []Entry) error {
	batch := make([]Entry, len(entries))
	copy(batch, entries)

	seen := make(map[int64]bool, len(batch))
	var max int64
	for i := range batch {
		e := &batch[i]
		e.Clean()
		if !screen.IsValidID(e.ID) {
			return fmt.Errorf("%w: %d", ErrInvalidID, e.ID)
		}
		if seen[e.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, Key(e.ID))
		}
		seen[e.ID] = true
		if !screen.IsValidName(e.Name) {
			return fmt.Errorf("%w: %s: %q", ErrInvalidName, Key(e.ID), e.Name)
		}
		if !s.signer.Verify(*e) {
			return fmt.Errorf("%w: %s", ErrBadSignature, Key(e.ID))
		}
		if e.ID > max {
			max = e.ID
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range batch {
		if _, ok := s.entries[e.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, Key(e.ID))
		}
	}
	for _, e := range batch {
		s.entries[e.ID] = e
	}
	s.ids.Seed(max)
	return nil
}

// Signed reports whether any stored entry carries a signature.
func (s *Store) Signed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.Signature != "" {
			return true
		}
	}
	return false
}

// Signer returns the signer entries are sealed with.
func (s *Store) Signer() *Signer { return s.signer }
