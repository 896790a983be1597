package alert

import (
	"context"
	"sync"
)

// MemoryStore keeps alert state in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	state State
	saves int
}

// NewMemoryStore creates a store seeded with initial, which may be nil.
func NewMemoryStore(initial State) *MemoryStore {
	if initial == nil {
		initial = State{}
	}
	return &MemoryStore{state: initial.Clone()}
}

// Load returns a copy of the stored state.
func (s *MemoryStore) Load(_ context.Context) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone(), nil
}

// Save replaces the stored state.
func (s *MemoryStore) Save(_ context.Context, state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	s.saves++
	return nil
}

// Saves reports how many times Save was called.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
