package memory

import (
	"sync"
	"time"

	"github.com/mycok/kwScout/runtrack"
)

// Static and compile-time check to ensure InMemoryTracker implements
// Tracker interface.
var _ runtrack.Tracker = (*InMemoryTracker)(nil)

type runKey struct {
	industry string
	keyword  string
}

// InMemoryTracker is a Tracker implementation that keeps run completion
// state in memory.
type InMemoryTracker struct {
	mu        sync.RWMutex
	completed map[runKey]time.Time
}

// NewInMemoryTracker instantiates and returns an in-memory run tracker.
func NewInMemoryTracker() *InMemoryTracker {
	return &InMemoryTracker{
		completed: make(map[runKey]time.Time),
	}
}

// IsComplete checks whether the run identified by the industry and
// keyword pair has already completed.
func (s *InMemoryTracker) IsComplete(industry, keyword string) (bool, error) {
	// Read lock allows other processes or goroutines to perform reads by
	// concurrently acquiring other read locks.
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.completed[runKey{industry: industry, keyword: keyword}]

	return exists, nil
}

// MarkComplete records the run identified by the industry and keyword
// pair as completed. The completion time of an already-completed run is
// preserved.
func (s *InMemoryTracker) MarkComplete(industry, keyword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := runKey{industry: industry, keyword: keyword}
	if _, exists := s.completed[key]; exists {
		return nil
	}

	s.completed[key] = time.Now()

	return nil
}
