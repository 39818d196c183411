// Package momentstore bounds the memory a long-running demo session spends
// remembering sealed moments, trading the core pipeline's "return it and
// forget it" contract (FrameAnalysis carries no history beyond one frame)
// for a harness-side cache a host can page back through.
package momentstore

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/TheGonzalezDesigns/waldo-vision/track"
)

// Store is a fixed-capacity, least-recently-used cache of completed
// track.Moments, keyed by Moment.ID. Evicted moments are simply dropped —
// the store is a diagnostic convenience, not a durability guarantee.
type Store struct {
	cache *lru.Cache[uint64, track.Moment]
}

// New constructs a Store holding at most capacity moments. capacity <= 0 is
// treated as 1, since lru.New rejects a zero size.
func New(capacity int) (*Store, error) {
	if capacity <= 0 {
		capacity = 1
	}
	cache, err := lru.New[uint64, track.Moment](capacity)
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache}, nil
}

// Add records a sealed moment, evicting the least recently touched entry if
// the store is at capacity.
func (s *Store) Add(m track.Moment) {
	s.cache.Add(m.ID, m)
}

// Get returns the moment recorded under id, if still present.
func (s *Store) Get(id uint64) (track.Moment, bool) {
	return s.cache.Get(id)
}

// Len returns the number of moments currently held.
func (s *Store) Len() int {
	return s.cache.Len()
}

// Recent returns every moment currently in the store, in no particular
// order. Intended for a harness's periodic summary log, not a hot path.
func (s *Store) Recent() []track.Moment {
	out := make([]track.Moment, 0, s.cache.Len())
	for _, k := range s.cache.Keys() {
		if m, ok := s.cache.Peek(k); ok {
			out = append(out, m)
		}
	}
	return out
}
