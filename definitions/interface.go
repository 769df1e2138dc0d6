// Package definitions provides workflow definition loaders: an in-memory
// static registry and a YAML directory loader with schema validation.
package definitions

import (
	"context"
	"errors"

	"github.com/gobbyhq/warden/workflow"
)

// Loader resolves a workflow name to a loaded definition. A miss is a bool,
// not an error: a missing definition means "no active governance" and the
// engine allows the session's events (fail open).
type Loader interface {
	Load(ctx context.Context, name string) (workflow.Definition, bool)
}

// ErrInvalidDefinition is returned when a definition document fails schema
// or structural validation.
var ErrInvalidDefinition = errors.New("invalid workflow definition")
