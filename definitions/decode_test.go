package definitions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobbyhq/warden/workflow"
)

const stepDoc = `
name: coder
steps:
  plan:
    allowed_tools: [Read, Glob, Grep]
    transitions:
      - when: task_claimed
        to: working
  working:
    blocked_mcp_tools:
      - "github:*"
    on_enter:
      - action: inject_message
        params:
          message: "implement the claimed task"
    transitions:
      - when: tests_passing
        to: review
        on_transition:
          action: log
          params:
            message: "moving to review"
  review:
    allowed_tools: all
  reflect: {}
`

const lifecycleDoc = `
name: session-hooks
kind: lifecycle
triggers:
  on_session_start:
    - action: inject_message
      params:
        message: "welcome"
  on_pre_compact:
    - action: log
`

func TestDecode_StepWorkflow(t *testing.T) {
	def, err := Decode([]byte(stepDoc))
	require.NoError(t, err)

	w, ok := def.(*workflow.StepWorkflow)
	require.True(t, ok)
	assert.Equal(t, "coder", w.Name())
	assert.Equal(t, workflow.KindSteps, w.Kind())
	assert.Len(t, w.Steps, 4)

	plan := w.Step("plan")
	require.NotNil(t, plan)
	assert.True(t, plan.AllowedTools.IsRestricted())
	require.Len(t, plan.Transitions, 1)
	assert.Equal(t, "working", plan.Transitions[0].To)
	assert.True(t, plan.Transitions[0].When.Evaluate(map[string]any{"task_claimed": true}))

	working := w.Step("working")
	require.NotNil(t, working)
	require.Len(t, working.OnEnter, 1)
	assert.Equal(t, "inject_message", working.OnEnter[0].Action)
	require.Len(t, working.Transitions, 1)
	require.NotNil(t, working.Transitions[0].OnTransition)
	assert.Equal(t, "log", working.Transitions[0].OnTransition.Action)

	assert.True(t, w.Step("review").AllowedTools.All)
	assert.True(t, w.HasReflectStep())
}

func TestDecode_LifecycleWorkflow(t *testing.T) {
	def, err := Decode([]byte(lifecycleDoc))
	require.NoError(t, err)

	w, ok := def.(*workflow.LifecycleWorkflow)
	require.True(t, ok)
	assert.Equal(t, "session-hooks", w.Name())
	require.Len(t, w.TriggersFor("on_session_start"), 1)
	assert.Equal(t, "welcome", w.TriggersFor("on_session_start")[0].Params["message"])
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "name: [unclosed"},
		{"unknown kind", "name: x\nkind: nope\ntriggers: {}"},
		{"missing name", "steps:\n  plan: {}"},
		{"missing steps", "name: x"},
		{"unknown step field", "name: x\nsteps:\n  plan:\n    allowd_tools: [Read]"},
		{"transition without target", "name: x\nsteps:\n  plan:\n    transitions:\n      - when: go"},
		{"dangling target", "name: x\nsteps:\n  plan:\n    transitions:\n      - when: go\n        to: nowhere"},
		{"lifecycle without triggers", "name: x\nkind: lifecycle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}
}
