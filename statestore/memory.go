package statestore

import (
	"context"
	"sort"
	"sync"

	"github.com/gobbyhq/warden/workflow"
)

// MemoryStore provides an in-memory implementation of the Store interface.
// It is thread-safe and suitable for development, testing, and
// single-instance deployments. For distributed systems, use RedisStore.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]*workflow.State

	// saves counts successful Save calls, exposed for tests asserting
	// persistence behavior (e.g. one save per transition).
	saves int
}

// NewMemoryStore creates a new in-memory state store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]*workflow.State),
	}
}

// Get retrieves a session state by ID.
// Returns a deep copy to prevent external mutations.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*workflow.State, bool) {
	if sessionID == "" {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.states[sessionID]
	if !exists {
		return nil, false
	}
	return state.Clone(), true
}

// Save persists a session state. If it already exists, it will be updated.
func (s *MemoryStore) Save(_ context.Context, state *workflow.State) error {
	if state == nil {
		return ErrInvalidState
	}
	if state.SessionID == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a deep copy to prevent external mutations
	s.states[state.SessionID] = state.Clone()
	s.saves++
	return nil
}

// Delete removes a session state by ID.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.states[sessionID]; !exists {
		return ErrNotFound
	}
	delete(s.states, sessionID)
	return nil
}

// List returns all session IDs, sorted.
func (s *MemoryStore) List(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SaveCount returns the number of successful saves. Intended for tests.
func (s *MemoryStore) SaveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
