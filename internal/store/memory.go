package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/smart-mirror/internal/display"
)

var (
	// ErrNotFound is returned when nothing has been published yet.
	ErrNotFound = errors.New("no display state published yet")
)

// MemoryStore is a concurrency-safe holder of the latest display state.
// Each section is replaced wholesale; nothing older is kept.
type MemoryStore struct {
	mu sync.RWMutex

	state display.State

	// key: section, value: time of the last update for it
	updated map[display.Section]time.Time

	now func() time.Time
}

// NewMemoryStore creates a MemoryStore seeded with display.InitialState.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state:   display.InitialState(),
		updated: make(map[display.Section]time.Time),
		now:     time.Now,
	}
}

// Apply folds u into the state and returns a copy of the result.
func (s *MemoryStore) Apply(u display.Update) display.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Apply(&s.state)
	s.updated[u.Section()] = s.now()

	return s.state.Clone()
}

// Snapshot returns a copy of the current state.
func (s *MemoryStore) Snapshot() (display.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.updated) == 0 {
		return display.State{}, ErrNotFound
	}
	return s.state.Clone(), nil
}

// UpdatedAt reports when section was last written.
func (s *MemoryStore) UpdatedAt(section display.Section) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ts, ok := s.updated[section]
	return ts, ok
}
