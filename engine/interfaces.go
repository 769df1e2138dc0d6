package engine

import (
	"context"

	"github.com/gobbyhq/warden/workflow"
)

// Action result keys recognized by the engine. Everything else in an action
// result is ignored.
const (
	// ResultInjectMessage holds a message to inject into the agent context.
	ResultInjectMessage = "inject_message"
	// ResultSetVariables holds a map of session variables to merge.
	ResultSetVariables = "set_variables"
)

// ActionExecutor runs a named action with parameters and returns its result
// map. The engine calls it synchronously, in declared order, and treats any
// error as log-and-continue (fail open).
type ActionExecutor interface {
	Execute(ctx context.Context, action string, params map[string]any) (map[string]any, error)
}

// StateStore loads and saves workflow state by session id. A Get miss means
// the session is ungoverned; backend failures must surface as a miss, not
// an error, so storage outages fail open.
type StateStore interface {
	Get(ctx context.Context, sessionID string) (*workflow.State, bool)
	Save(ctx context.Context, state *workflow.State) error
}

// DefinitionLoader resolves a workflow name to its loaded definition. A
// miss means no active governance for that name.
type DefinitionLoader interface {
	Load(ctx context.Context, name string) (workflow.Definition, bool)
}
