// Package engine implements the per-session workflow governance engine: it
// decides whether each agent event is allowed, blocked, or enriched with
// injected context, and drives the session through its declarative workflow
// (steps, transitions, tool policy, lifecycle triggers).
//
// The engine is logic-only: it performs no I/O of its own beyond calling
// its collaborators (action executor, state store, definition loader)
// synchronously. Every internal failure fails open — a governance bug must
// never block an agent indefinitely.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/gobbyhq/warden/events"
	prom "github.com/gobbyhq/warden/metrics/prometheus"
	"github.com/gobbyhq/warden/workflow"
)

const (
	// defaultStepTimeout is the step-duration limit before stuck recovery.
	defaultStepTimeout = 30 * time.Minute
	// defaultMaxAutoTransitions bounds the auto-transition chain per event.
	defaultMaxAutoTransitions = 3
)

// TimeFunc returns the current time. Override for deterministic tests.
type TimeFunc func() time.Time

// Engine evaluates events against workflow definitions and session state.
// It is safe for concurrent use; events for the same session are serialized
// internally.
type Engine struct {
	store  StateStore
	loader DefinitionLoader
	exec   ActionExecutor

	stepTimeout        time.Duration
	maxAutoTransitions int
	now                TimeFunc

	locks  *sessionLocks
	tracer trace.Tracer
}

// Option configures an Engine during construction.
type Option func(*Engine)

// WithStepTimeout sets the step-duration limit that triggers stuck
// recovery into the reflect step. Zero disables stuck recovery.
func WithStepTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.stepTimeout = d
	}
}

// WithMaxAutoTransitions sets the auto-transition depth bound per event.
func WithMaxAutoTransitions(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAutoTransitions = n
		}
	}
}

// WithTimeFunc sets a custom time function for deterministic tests.
func WithTimeFunc(fn TimeFunc) Option {
	return func(e *Engine) {
		e.now = fn
	}
}

// New creates an engine over the given collaborators.
func New(store StateStore, loader DefinitionLoader, exec ActionExecutor, opts ...Option) *Engine {
	e := &Engine{
		store:              store,
		loader:             loader,
		exec:               exec,
		stepTimeout:        defaultStepTimeout,
		maxAutoTransitions: defaultMaxAutoTransitions,
		now:                time.Now,
		locks:              newSessionLocks(),
		tracer:             otel.Tracer("github.com/gobbyhq/warden/engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleEvent evaluates one event and returns the engine's decision. It
// never returns nil and never returns an error: every expected domain
// condition (unknown step, missing workflow, action failure) is normal
// control flow resolving to allow.
func (e *Engine) HandleEvent(ctx context.Context, evt *events.Event) *Response {
	if evt == nil || evt.SessionID == "" {
		return Allow()
	}

	ctx, span := e.tracer.Start(ctx, "engine.handle_event", trace.WithAttributes(
		attribute.String("warden.event_type", string(evt.Type)),
		attribute.String("warden.session_id", evt.SessionID),
	))
	defer span.End()

	unlock := e.locks.acquire(evt.SessionID)
	defer unlock()

	resp := e.handleLocked(ctx, evt)
	span.SetAttributes(attribute.String("warden.decision", string(resp.Decision)))
	return resp
}

// handleLocked runs the full dispatch under the session lock.
func (e *Engine) handleLocked(ctx context.Context, evt *events.Event) *Response {
	state, ok := e.store.Get(ctx, evt.SessionID)
	if !ok || state == nil {
		// Ungoverned session: no state was ever assigned.
		return Allow()
	}

	if state.Disabled {
		// Escape hatch: allow everything, skip all processing.
		return Allow()
	}

	def, ok := e.loader.Load(ctx, state.WorkflowName)
	if !ok {
		// Workflow not found: no active governance.
		return Allow()
	}

	var resp *Response
	switch w := def.(type) {
	case *workflow.LifecycleWorkflow:
		resp = e.EvaluateLifecycleTriggers(ctx, w, evt)
	case *workflow.StepWorkflow:
		resp = e.handleStepEvent(ctx, w, state, evt)
	default:
		resp = Allow()
	}

	prom.RecordDecision(state.WorkflowName, string(evt.Type), string(resp.Decision))
	return resp
}

// handleStepEvent runs the step-workflow pipeline: stuck recovery, tool
// gating, task-claim detection, then transition evaluation.
func (e *Engine) handleStepEvent(
	ctx context.Context,
	w *workflow.StepWorkflow,
	state *workflow.State,
	evt *events.Event,
) *Response {
	if resp := e.checkStuckStep(ctx, w, state); resp != nil {
		return resp
	}

	if evt.IsBeforeTool() {
		if resp := e.evaluateToolGating(w, state, evt); !resp.Allowed() {
			prom.RecordToolBlock(w.Name(), state.Step)
			return resp
		}
		state.StepActionCount++
		state.TotalActionCount++
		e.save(ctx, state)
	}

	if evt.IsAfterTool() {
		e.detectTaskClaim(ctx, state, evt)
	}

	msgs := e.autoTransitionChain(ctx, w, state)
	if len(msgs) > 0 {
		return Modify(strings.Join(msgs, "\n"), "workflow context injected")
	}
	return Allow()
}

// checkStuckStep forces a transition into the reflect step when the session
// has exceeded the step-duration limit. Runs before all other per-event
// logic and is independent of the event type.
func (e *Engine) checkStuckStep(
	ctx context.Context,
	w *workflow.StepWorkflow,
	state *workflow.State,
) *Response {
	if e.stepTimeout <= 0 {
		return nil
	}
	if state.Step == workflow.ReflectStepName || !w.HasReflectStep() {
		return nil
	}
	elapsed := state.StepDuration(e.now())
	if elapsed <= e.stepTimeout {
		return nil
	}

	stuckStep := state.Step
	msgs := e.transitionTo(ctx, w, state, workflow.ReflectStepName)
	prom.RecordStuckRecovery(w.Name())

	parts := append([]string{fmt.Sprintf(
		"Step duration limit exceeded: %s in step %q. Moving to %q to reassess the approach.",
		elapsed.Round(time.Second), stuckStep, workflow.ReflectStepName)}, msgs...)
	return Modify(strings.Join(parts, "\n"), "step duration limit exceeded")
}

// save persists state best-effort: a failed save is logged by the store
// wrapper and must not abort event handling.
func (e *Engine) save(ctx context.Context, state *workflow.State) {
	if err := e.store.Save(ctx, state); err != nil {
		logSaveFailure(state.SessionID, err)
	}
}
