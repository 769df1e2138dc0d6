package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobbyhq/warden/events"
	"github.com/gobbyhq/warden/workflow"
)

func afterTaskTool(sessionID, tool string, args map[string]any) *events.Event {
	return &events.Event{
		Type:      events.EventAfterTool,
		SessionID: sessionID,
		Timestamp: fixedTime(),
		Data: map[string]any{
			"tool_name": "call_tool",
			"tool_input": map[string]any{
				"server_name": TaskServerName,
				"tool_name":   tool,
				"arguments":   args,
			},
		},
	}
}

func claimWorkflow() *workflow.StepWorkflow {
	return &workflow.StepWorkflow{
		WorkflowName: "coder",
		Steps: map[string]*workflow.Step{
			"plan": {AllowedTools: workflow.AllTools},
		},
	}
}

func TestTaskClaim_CreateTask(t *testing.T) {
	state := workflow.NewState("s1", "coder", "plan", fixedTime())
	f := setup(t, claimWorkflow(), state)

	resp := f.engine.HandleEvent(context.Background(),
		afterTaskTool("s1", "create_task", map[string]any{"title": "fix the bug"}))
	assert.Equal(t, DecisionAllow, resp.Decision)

	saved, ok := f.store.Get(context.Background(), "s1")
	require.True(t, ok)
	assert.True(t, saved.TaskClaimed)
	assert.Equal(t, true, saved.Variable(workflow.VarTaskClaimed))
	assert.Empty(t, saved.ClaimedTaskID)
}

func TestTaskClaim_UpdateTaskRequiresInProgress(t *testing.T) {
	tests := []struct {
		status  string
		claimed bool
	}{
		{"in_progress", true},
		{"done", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run("status="+tt.status, func(t *testing.T) {
			state := workflow.NewState("s1", "coder", "plan", fixedTime())
			f := setup(t, claimWorkflow(), state)

			f.engine.HandleEvent(context.Background(),
				afterTaskTool("s1", "update_task", map[string]any{"task_id": "7", "status": tt.status}))

			saved, _ := f.store.Get(context.Background(), "s1")
			assert.Equal(t, tt.claimed, saved.TaskClaimed)
		})
	}
}

func TestTaskClaim_ClaimTaskResolvesCanonicalID(t *testing.T) {
	const canonical = "7b4a8c1e-23dd-44f0-9e0a-6f2b3c4d5e6f"

	t.Run("uuid from result", func(t *testing.T) {
		state := workflow.NewState("s1", "coder", "plan", fixedTime())
		f := setup(t, claimWorkflow(), state)

		evt := afterTaskTool("s1", "claim_task", map[string]any{"task": "#12"})
		evt.Data["tool_response"] = map[string]any{
			"task": map[string]any{"id": canonical, "title": "fix the bug"},
		}
		f.engine.HandleEvent(context.Background(), evt)

		saved, _ := f.store.Get(context.Background(), "s1")
		assert.True(t, saved.TaskClaimed)
		assert.Equal(t, canonical, saved.ClaimedTaskID)
		assert.Equal(t, canonical, saved.Variable(workflow.VarClaimedTaskID))
	})

	t.Run("uuid argument", func(t *testing.T) {
		state := workflow.NewState("s1", "coder", "plan", fixedTime())
		f := setup(t, claimWorkflow(), state)

		f.engine.HandleEvent(context.Background(),
			afterTaskTool("s1", "claim_task", map[string]any{"task_id": canonical}))

		saved, _ := f.store.Get(context.Background(), "s1")
		assert.Equal(t, canonical, saved.ClaimedTaskID)
	})

	t.Run("unresolvable ref stored as given", func(t *testing.T) {
		state := workflow.NewState("s1", "coder", "plan", fixedTime())
		f := setup(t, claimWorkflow(), state)

		f.engine.HandleEvent(context.Background(),
			afterTaskTool("s1", "claim_task", map[string]any{"task": "#12"}))

		saved, _ := f.store.Get(context.Background(), "s1")
		assert.True(t, saved.TaskClaimed)
		assert.Equal(t, "#12", saved.ClaimedTaskID)
	})
}

func TestTaskClaim_FailedCallNeverClaims(t *testing.T) {
	state := workflow.NewState("s1", "coder", "plan", fixedTime())
	f := setup(t, claimWorkflow(), state)

	evt := afterTaskTool("s1", "create_task", map[string]any{"title": "x"})
	evt.Data["error"] = "task server unavailable"
	f.engine.HandleEvent(context.Background(), evt)

	saved, _ := f.store.Get(context.Background(), "s1")
	assert.False(t, saved.TaskClaimed)
}

func TestTaskClaim_ReadOnlyToolsNeverClaim(t *testing.T) {
	state := workflow.NewState("s1", "coder", "plan", fixedTime())
	f := setup(t, claimWorkflow(), state)

	f.engine.HandleEvent(context.Background(),
		afterTaskTool("s1", "list_tasks", nil))
	f.engine.HandleEvent(context.Background(),
		afterTaskTool("s1", "get_task", map[string]any{"task_id": "7"}))

	saved, _ := f.store.Get(context.Background(), "s1")
	assert.False(t, saved.TaskClaimed)
}

func TestTaskClaim_OtherServerIgnored(t *testing.T) {
	state := workflow.NewState("s1", "coder", "plan", fixedTime())
	f := setup(t, claimWorkflow(), state)

	evt := &events.Event{
		Type:      events.EventAfterTool,
		SessionID: "s1",
		Timestamp: fixedTime(),
		Data: map[string]any{
			"tool_name":  "call_tool",
			"mcp_server": "other-server",
			"mcp_tool":   "create_task",
		},
	}
	f.engine.HandleEvent(context.Background(), evt)

	saved, _ := f.store.Get(context.Background(), "s1")
	assert.False(t, saved.TaskClaimed)
}

func TestTaskClaim_FeedsTransitionOnSameEvent(t *testing.T) {
	def := &workflow.StepWorkflow{
		WorkflowName: "coder",
		Steps: map[string]*workflow.Step{
			"plan": {
				AllowedTools: workflow.AllTools,
				Transitions: []workflow.Transition{
					{When: workflow.Var(workflow.VarTaskClaimed), To: "working"},
				},
			},
			"working": {},
		},
	}
	state := workflow.NewState("s1", "coder", "plan", fixedTime())
	f := setup(t, def, state)

	f.engine.HandleEvent(context.Background(),
		afterTaskTool("s1", "create_task", map[string]any{"title": "x"}))

	saved, _ := f.store.Get(context.Background(), "s1")
	assert.Equal(t, "working", saved.Step)
}

func TestResolveClaimedTaskID(t *testing.T) {
	const canonical = "0d9e7c5a-1b2c-4d3e-8f4a-5b6c7d8e9f0a"

	tests := []struct {
		name   string
		args   map[string]any
		result map[string]any
		want   string
	}{
		{
			name:   "result task.id wins over args",
			args:   map[string]any{"task_id": "#3"},
			result: map[string]any{"task": map[string]any{"id": canonical}},
			want:   canonical,
		},
		{
			name:   "result top-level id",
			args:   map[string]any{},
			result: map[string]any{"id": canonical},
			want:   canonical,
		},
		{
			name:   "non-uuid result id ignored",
			args:   map[string]any{"task_id": canonical},
			result: map[string]any{"id": "#3"},
			want:   canonical,
		},
		{
			name: "task arg fallback",
			args: map[string]any{"task": "#3"},
			want: "#3",
		},
		{
			name: "empty everything",
			args: map[string]any{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveClaimedTaskID(tt.args, tt.result))
		})
	}
}
