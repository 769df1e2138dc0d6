package definitions

import (
	"context"
	"sync"

	"github.com/gobbyhq/warden/workflow"
)

// Static is an in-memory Loader backed by a name-to-definition map. It is
// the natural loader for tests and for embedders that construct definitions
// programmatically.
type Static struct {
	mu   sync.RWMutex
	defs map[string]workflow.Definition
}

// NewStatic creates a static loader, optionally pre-registering definitions.
func NewStatic(defs ...workflow.Definition) *Static {
	s := &Static{defs: make(map[string]workflow.Definition, len(defs))}
	for _, def := range defs {
		s.defs[def.Name()] = def
	}
	return s
}

// Register adds or replaces a definition under its own name.
func (s *Static) Register(def workflow.Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs[def.Name()] = def
}

// Load implements Loader.
func (s *Static) Load(_ context.Context, name string) (workflow.Definition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[name]
	return def, ok
}
