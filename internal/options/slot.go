package options

import "sync"

// Slot holds the single live snapshot. Readers and the writer exchange only
// the pointer under the lock; snapshot contents are never mutated in place.
type Slot struct {
	mu      sync.Mutex
	current *Snapshot
	version uint64
}

// Load returns the current snapshot and its version. The snapshot is nil and
// the version 0 until the first Store.
func (s *Slot) Load() (*Snapshot, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.version
}

// Store replaces the current snapshot and returns the new version.
func (s *Slot) Store(snap *Snapshot) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snap
	s.version++
	return s.version
}
