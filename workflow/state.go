package workflow

import (
	"maps"
	"time"
)

// Well-known variable names set by the engine's after-tool enrichment.
const (
	// VarTaskClaimed is set true once the session claims a task.
	VarTaskClaimed = "task_claimed"
	// VarClaimedTaskID holds the canonical id of the claimed task.
	VarClaimedTaskID = "claimed_task_id"
)

// State is the mutable per-session workflow record. The session id is the
// primary key; all mutation goes through the engine under the per-session
// lock, so State itself carries no synchronization.
type State struct {
	SessionID    string `json:"session_id"`
	WorkflowName string `json:"workflow_name"`

	Step             string    `json:"step"`
	StepEnteredAt    time.Time `json:"step_entered_at"`
	StepActionCount  int       `json:"step_action_count"`
	TotalActionCount int       `json:"total_action_count"`

	Variables map[string]any `json:"variables,omitempty"`

	// ContextInjected is true once any on_enter action on the current step
	// produced an injected message.
	ContextInjected bool `json:"context_injected,omitempty"`

	// Approval gate: while pending, every tool call is blocked regardless
	// of step policy.
	ApprovalPending     bool   `json:"approval_pending,omitempty"`
	ApprovalConditionID string `json:"approval_condition_id,omitempty"`
	ApprovalPrompt      string `json:"approval_prompt,omitempty"`

	// Disabled short-circuits all governance: every tool is allowed and no
	// other processing runs.
	Disabled       bool   `json:"disabled,omitempty"`
	DisabledReason string `json:"disabled_reason,omitempty"`

	// Task-claim enrichment, set only by the after-tool side channel.
	TaskClaimed   bool   `json:"task_claimed,omitempty"`
	ClaimedTaskID string `json:"claimed_task_id,omitempty"`
}

// NewState creates a session state positioned at the workflow's initial step.
func NewState(sessionID, workflowName, initialStep string, now time.Time) *State {
	return &State{
		SessionID:     sessionID,
		WorkflowName:  workflowName,
		Step:          initialStep,
		StepEnteredAt: now,
		Variables:     map[string]any{},
	}
}

// SetVariable sets a session variable, allocating the map on first use.
func (s *State) SetVariable(name string, value any) {
	if s.Variables == nil {
		s.Variables = map[string]any{}
	}
	s.Variables[name] = value
}

// Variable returns a session variable, or nil when unset.
func (s *State) Variable(name string) any {
	if s.Variables == nil {
		return nil
	}
	return s.Variables[name]
}

// MarkTaskClaimed records the task-claim enrichment on both the dedicated
// fields and the variables map so transition conditions can react to it.
func (s *State) MarkTaskClaimed(taskID string) {
	s.TaskClaimed = true
	s.SetVariable(VarTaskClaimed, true)
	if taskID != "" {
		s.ClaimedTaskID = taskID
		s.SetVariable(VarClaimedTaskID, taskID)
	}
}

// EnterStep positions the state at a step, resetting the per-step counters.
func (s *State) EnterStep(step string, now time.Time) {
	s.Step = step
	s.StepEnteredAt = now
	s.StepActionCount = 0
	s.ContextInjected = false
}

// StepDuration returns how long the session has been in the current step.
func (s *State) StepDuration(now time.Time) time.Duration {
	return now.Sub(s.StepEnteredAt)
}

// Clone returns a deep copy of the state. Variable values are copied
// shallowly; callers must not mutate nested values in place.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	if s.Variables != nil {
		c.Variables = make(map[string]any, len(s.Variables))
		maps.Copy(c.Variables, s.Variables)
	}
	return &c
}
