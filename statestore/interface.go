// Package statestore provides workflow session state persistence.
package statestore

import (
	"context"
	"errors"

	"github.com/gobbyhq/warden/workflow"
)

// Store defines the interface for workflow state storage keyed by session id.
//
// Get deliberately reports a miss as a bool rather than an error: a session
// without state is normal control flow for the engine (ungoverned session),
// and backend failures fail open as a miss so a storage outage can never
// block an agent.
type Store interface {
	// Get retrieves the state for a session. The returned state is owned by
	// the caller; mutating it does not affect the stored copy until Save.
	Get(ctx context.Context, sessionID string) (*workflow.State, bool)

	// Save persists a session state, overwriting any previous value.
	Save(ctx context.Context, state *workflow.State) error

	// Delete removes a session state. Deleting a missing session is an error.
	Delete(ctx context.Context, sessionID string) error
}

// ErrInvalidID is returned when an empty session ID is provided.
var ErrInvalidID = errors.New("invalid session ID")

// ErrInvalidState is returned when a nil or unkeyed state is saved.
var ErrInvalidState = errors.New("invalid workflow state")

// ErrNotFound is returned when a session doesn't exist in the store.
var ErrNotFound = errors.New("session state not found")
