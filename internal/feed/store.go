// Package feed holds the in-memory feed snapshot shared by the rest of ramah.
//
// The snapshot is replaced wholesale on every successful fetch and reset to
// empty on failure. Nothing here is persisted; a new process always starts
// from an empty store.
package feed

import (
	"sync"
	"time"
)

// Story is one feed item. Stories are never mutated after they are stored.
type Story struct {
	Headline      string
	FirstSentence string
	Source        string
	Timestamp     string  // raw value from the payload
	MeanScore     float64 // 0 when absent or not numeric
	Link          string

	// Published is the parsed Timestamp. Zero when the timestamp is missing
	// or unparsable; such stories sort as the oldest.
	Published time.Time
}

// Metadata carries the envelope fields that sit next to the story array.
type Metadata map[string]any

// Snapshot is one immutable view of the feed.
type Snapshot struct {
	Stories    []Story
	Metadata   Metadata
	FetchedAt  time.Time
	Generation uint64
}

// Len returns the number of stories in the snapshot.
func (s Snapshot) Len() int { return len(s.Stories) }

// Empty reports whether the snapshot has no stories.
func (s Snapshot) Empty() bool { return len(s.Stories) == 0 }

// Store is the process-wide holder of the current Snapshot.
// Thread-safety: all methods are safe for concurrent use. Readers always see
// either the previous or the next snapshot, never a mix.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
	gen  uint64
}

// NewStore returns an empty store at generation 0.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the current snapshot. The Stories slice is shared and must
// be treated as read-only.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Replace installs a new snapshot and returns its generation.
// The stories slice is copied, so later changes by the caller are not visible.
func (s *Store) Replace(stories []Story, md Metadata, fetchedAt time.Time) uint64 {
	own := make([]Story, len(stories))
	copy(own, stories)

	ownMD := make(Metadata, len(md))
	for k, v := range md {
		ownMD[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.snap = Snapshot{
		Stories:    own,
		Metadata:   ownMD,
		FetchedAt:  fetchedAt,
		Generation: s.gen,
	}
	return s.gen
}

// Reset clears stories and metadata. It still bumps the generation so that
// anything keyed on the old snapshot is invalidated.
func (s *Store) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.snap = Snapshot{Generation: s.gen}
	return s.gen
}

// Generation returns the generation of the current snapshot.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Len returns the number of stories currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snap.Stories)
}

// Empty reports whether the store holds no stories.
func (s *Store) Empty() bool {
	return s.Len() == 0
}
