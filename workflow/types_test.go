package workflow

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestToolSelector_Allows(t *testing.T) {
	tests := []struct {
		name     string
		selector ToolSelector
		tool     string
		want     bool
	}{
		{"zero value allows all", ToolSelector{}, "Edit", true},
		{"all sentinel", AllTools, "Edit", true},
		{"listed tool", Tools("Read", "Grep"), "Read", true},
		{"unlisted tool", Tools("Read", "Grep"), "Edit", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.selector.Allows(tt.tool); got != tt.want {
				t.Errorf("Allows(%q) = %v, want %v", tt.tool, got, tt.want)
			}
		})
	}
}

func TestToolSelector_IsRestricted(t *testing.T) {
	if AllTools.IsRestricted() {
		t.Error("AllTools should not be restricted")
	}
	if (ToolSelector{}).IsRestricted() {
		t.Error("zero selector should not be restricted")
	}
	if !Tools("Read").IsRestricted() {
		t.Error("name list should be restricted")
	}
}

func TestToolSelector_UnmarshalYAML(t *testing.T) {
	var s ToolSelector
	if err := yaml.Unmarshal([]byte(`all`), &s); err != nil {
		t.Fatalf("unmarshal 'all': %v", err)
	}
	if !s.All {
		t.Error("expected All sentinel")
	}

	if err := yaml.Unmarshal([]byte(`[Read, Grep]`), &s); err != nil {
		t.Fatalf("unmarshal list: %v", err)
	}
	if s.All || len(s.Names) != 2 {
		t.Errorf("expected 2-name selector, got %+v", s)
	}

	if err := yaml.Unmarshal([]byte(`sometimes`), &s); err == nil {
		t.Error("expected error for unknown scalar")
	}
}

func TestTransition_UnmarshalYAML(t *testing.T) {
	doc := `
when: task_claimed
to: working
on_transition:
  action: announce
`
	var tr Transition
	if err := yaml.Unmarshal([]byte(doc), &tr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if tr.To != "working" {
		t.Errorf("To = %q, want %q", tr.To, "working")
	}
	if tr.OnTransition == nil || tr.OnTransition.Action != "announce" {
		t.Errorf("OnTransition = %+v, want announce", tr.OnTransition)
	}
	if !tr.When.Evaluate(map[string]any{"task_claimed": true}) {
		t.Error("expected parsed condition to evaluate")
	}

	var missing Transition
	if err := yaml.Unmarshal([]byte(`when: x`), &missing); err == nil {
		t.Error("expected error for transition without target")
	}
}

func TestMatchMCPPattern(t *testing.T) {
	tests := []struct {
		pattern, server, tool string
		want                  bool
	}{
		{"gobby-tasks:claim_task", "gobby-tasks", "claim_task", true},
		{"gobby-tasks:claim_task", "gobby-tasks", "list_tasks", false},
		{"gobby-tasks:*", "gobby-tasks", "anything", true},
		{"gobby-tasks:*", "other", "anything", false},
		{"no-colon", "no-colon", "x", false},
		{"", "a", "b", false},
	}
	for _, tt := range tests {
		if got := MatchMCPPattern(tt.pattern, tt.server, tt.tool); got != tt.want {
			t.Errorf("MatchMCPPattern(%q, %q, %q) = %v, want %v",
				tt.pattern, tt.server, tt.tool, got, tt.want)
		}
	}
}

func TestStepWorkflow_Lookups(t *testing.T) {
	w := &StepWorkflow{
		WorkflowName: "coder",
		Steps: map[string]*Step{
			"plan":    {},
			"reflect": {},
		},
	}
	if w.Kind() != KindSteps {
		t.Errorf("Kind() = %q, want %q", w.Kind(), KindSteps)
	}
	if w.Step("plan") == nil {
		t.Error("expected plan step")
	}
	if w.Step("missing") != nil {
		t.Error("expected nil for missing step")
	}
	if !w.HasReflectStep() {
		t.Error("expected reflect step")
	}
}

func TestLifecycleWorkflow_TriggersFor(t *testing.T) {
	w := &LifecycleWorkflow{
		WorkflowName: "hooks",
		Triggers: map[string][]TriggerSpec{
			"on_session_start": {{Action: "greet"}},
		},
	}
	if w.Kind() != KindLifecycle {
		t.Errorf("Kind() = %q, want %q", w.Kind(), KindLifecycle)
	}
	if got := w.TriggersFor("on_session_start"); len(got) != 1 {
		t.Errorf("TriggersFor = %v, want 1 trigger", got)
	}
	if got := w.TriggersFor("on_session_end"); got != nil {
		t.Errorf("TriggersFor(unknown) = %v, want nil", got)
	}
}
