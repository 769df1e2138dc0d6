// Package actions provides a named-action executor for workflow steps and
// lifecycle triggers. The engine only depends on the executor contract
// (result maps that may carry inject_message / set_variables entries); this
// package supplies a registry plus the builtin actions so the module is
// usable without an external action library.
package actions

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gobbyhq/warden/engine"
	"github.com/gobbyhq/warden/logger"
)

// ErrUnknownAction is returned when an action name is not registered.
var ErrUnknownAction = errors.New("unknown action")

// Compile-time interface check
var _ engine.ActionExecutor = (*Registry)(nil)

// Func executes a single named action.
type Func func(ctx context.Context, params map[string]any) (map[string]any, error)

// Registry maps action names to implementations. A nil *Registry is safe to
// use — Execute returns ErrUnknownAction for everything.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// Option configures a Registry during construction.
type Option func(*Registry)

// WithAction registers a custom action.
func WithAction(name string, fn Func) Option {
	return func(r *Registry) {
		r.funcs[name] = fn
	}
}

// NewRegistry creates a Registry with the builtin actions plus any options.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{funcs: map[string]Func{
		"inject_message": injectMessage,
		"set_variable":   setVariable,
		"log":            logMessage,
	}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces an action implementation.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Execute runs a named action. It implements the engine's ActionExecutor
// contract.
func (r *Registry) Execute(ctx context.Context, action string, params map[string]any) (map[string]any, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	r.mu.RLock()
	fn, ok := r.funcs[action]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return fn(ctx, params)
}

// injectMessage returns its "message" param as injected context.
func injectMessage(_ context.Context, params map[string]any) (map[string]any, error) {
	msg, _ := params["message"].(string)
	if msg == "" {
		return nil, errors.New("inject_message requires a message param")
	}
	return map[string]any{engine.ResultInjectMessage: msg}, nil
}

// setVariable sets a single session variable through the result protocol.
func setVariable(_ context.Context, params map[string]any) (map[string]any, error) {
	name, _ := params["name"].(string)
	if name == "" {
		return nil, errors.New("set_variable requires a name param")
	}
	return map[string]any{
		engine.ResultSetVariables: map[string]any{name: params["value"]},
	}, nil
}

// logMessage writes a structured log line and produces no result.
func logMessage(_ context.Context, params map[string]any) (map[string]any, error) {
	msg, _ := params["message"].(string)
	logger.Info("workflow action log", "message", msg)
	return nil, nil
}
