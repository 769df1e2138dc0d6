package workflow

import (
	"fmt"

	"github.com/gobbyhq/warden/events"
)

// Rule is a step-level policy predicate evaluated against before-tool
// events after the allow/block lists. Rules are attached programmatically
// by the embedding layer; the first rule that blocks wins.
type Rule interface {
	// Name identifies the rule in block reasons and logs.
	Name() string
	// Evaluate inspects the event and session variables. A returned reason
	// is only used when blocked is true.
	Evaluate(evt *events.Event, state *State) (blocked bool, reason string)
}

// MaxStepActions blocks further tool calls once the current step has seen
// the given number of actions. Zero or negative limits disable the rule.
type MaxStepActions struct {
	Limit int
}

// Name implements Rule.
func (r MaxStepActions) Name() string { return "max_step_actions" }

// Evaluate implements Rule.
func (r MaxStepActions) Evaluate(_ *events.Event, state *State) (bool, string) {
	if r.Limit <= 0 || state == nil {
		return false, ""
	}
	if state.StepActionCount >= r.Limit {
		return true, fmt.Sprintf("step action limit %d reached", r.Limit)
	}
	return false, ""
}
