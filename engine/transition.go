package engine

import (
	"context"

	"github.com/gobbyhq/warden/logger"
	prom "github.com/gobbyhq/warden/metrics/prometheus"
	"github.com/gobbyhq/warden/workflow"
)

// transitionTo moves the session to the target step: on_exit actions of the
// current step run best-effort, the step fields reset, on_enter actions of
// the target run, and the state is persisted. Returns the messages injected
// by the target's on_enter actions.
func (e *Engine) transitionTo(
	ctx context.Context,
	w *workflow.StepWorkflow,
	state *workflow.State,
	target string,
) []string {
	from := state.Step
	if step := w.Step(from); step != nil {
		// on_exit messages are dropped: only on_enter actions inject context.
		e.runActions(ctx, state, step.OnExit)
	}

	state.EnterStep(target, e.now())

	var msgs []string
	if step := w.Step(target); step != nil {
		msgs = e.runActions(ctx, state, step.OnEnter)
	}
	if len(msgs) > 0 {
		state.ContextInjected = true
	}

	e.save(ctx, state)
	prom.RecordTransition(w.Name(), target)
	logger.Transition(state.SessionID, w.Name(), from, target)
	return msgs
}

// autoTransitionChain repeatedly evaluates the current step's transitions
// in order, following the first satisfied condition, until no condition is
// satisfied or the depth bound is reached. Self-transitions count toward
// the bound, which is what keeps ill-formed definitions from looping
// forever. Exceeding the bound is not an error: the chain stops silently on
// the last reached step.
func (e *Engine) autoTransitionChain(
	ctx context.Context,
	w *workflow.StepWorkflow,
	state *workflow.State,
) []string {
	var msgs []string
	for depth := 0; depth < e.maxAutoTransitions; depth++ {
		step := w.Step(state.Step)
		if step == nil {
			break
		}

		var fired *workflow.Transition
		for i := range step.Transitions {
			tr := &step.Transitions[i]
			if tr.When != nil && tr.When.Evaluate(state.Variables) {
				fired = tr
				break
			}
		}
		if fired == nil {
			break
		}

		if fired.OnTransition != nil {
			msgs = append(msgs, e.runActions(ctx, state, []workflow.ActionSpec{*fired.OnTransition})...)
		}
		msgs = append(msgs, e.transitionTo(ctx, w, state, fired.To)...)
	}
	return msgs
}
