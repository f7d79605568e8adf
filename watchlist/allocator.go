package watchlist

import "sync/atomic"

// IDAllocator hands out increasing entry ids. It is re-seeded from the
// highest stored id whenever a snapshot is loaded.
type IDAllocator struct {
	last atomic.Int64
}

// Next returns a fresh id, starting at 1.
func (a *IDAllocator) Next() int64 { return a.last.Add(1) }

// Seed makes sure future ids are greater than max.
func (a *IDAllocator) Seed(max int64) {
	for {
		cur := a.last.Load()
		if cur >= max || a.last.CompareAndSwap(cur, max) {
			return
		}
	}
}

// Last returns the most recently allocated or seeded id.
func (a *IDAllocator) Last() int64 { return a.last.Load() }
