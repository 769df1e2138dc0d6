package engine

import "sync"

// sessionLocks serializes event handling per session. Two concurrent events
// for the same session must not interleave reads and mutations of the same
// state, or a transition could be lost or double-applied; events for
// different sessions proceed independently.
//
// Locks are created on demand and kept for the life of the engine. The map
// is bounded by the number of distinct sessions seen; state cleanup is the
// session owner's responsibility, not the engine's.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the session and returns the unlock function.
func (l *sessionLocks) acquire(sessionID string) func() {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
