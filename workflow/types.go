// Package workflow defines the declarative workflow model that governs an
// agent session: step workflows (named steps, transitions, tool policy) and
// lifecycle workflows (event-keyed trigger actions), plus the mutable
// per-session State the engine drives through them.
package workflow

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind discriminates workflow definition variants.
type Kind string

// Kind values.
const (
	KindSteps     Kind = "steps"
	KindLifecycle Kind = "lifecycle"
)

// Definition is a loaded, immutable workflow definition. It is a sealed
// interface: the only implementations are StepWorkflow and LifecycleWorkflow,
// and the engine dispatches on the concrete type once per event.
type Definition interface {
	// Name returns the workflow name, unique per load.
	Name() string
	// Kind returns the definition variant.
	Kind() Kind

	definition()
}

// StepWorkflow is a workflow definition with named steps, ordered
// transitions, and per-step tool policy.
type StepWorkflow struct {
	WorkflowName string           `json:"name" yaml:"name"`
	Steps        map[string]*Step `json:"steps" yaml:"steps"`
}

// Name returns the workflow name.
func (w *StepWorkflow) Name() string { return w.WorkflowName }

// Kind returns KindSteps.
func (w *StepWorkflow) Kind() Kind { return KindSteps }

func (w *StepWorkflow) definition() {}

// Step returns the named step, or nil if it does not exist.
func (w *StepWorkflow) Step(name string) *Step {
	if w.Steps == nil {
		return nil
	}
	return w.Steps[name]
}

// ReflectStepName is the reserved step name used as the stuck-recovery
// target. A step workflow without a step of this name opts out of stuck
// recovery.
const ReflectStepName = "reflect"

// HasReflectStep reports whether the workflow defines a reflect step.
func (w *StepWorkflow) HasReflectStep() bool {
	return w.Step(ReflectStepName) != nil
}

// LifecycleWorkflow is a workflow definition mapping lifecycle event keys
// (e.g. "on_session_start") to ordered trigger actions. Lifecycle workflows
// are advisory: they may inject context but never gate tool calls.
type LifecycleWorkflow struct {
	WorkflowName string                   `json:"name" yaml:"name"`
	Triggers     map[string][]TriggerSpec `json:"triggers" yaml:"triggers"`
}

// Name returns the workflow name.
func (w *LifecycleWorkflow) Name() string { return w.WorkflowName }

// Kind returns KindLifecycle.
func (w *LifecycleWorkflow) Kind() Kind { return KindLifecycle }

func (w *LifecycleWorkflow) definition() {}

// TriggersFor returns the ordered trigger list for a lifecycle key, or nil.
func (w *LifecycleWorkflow) TriggersFor(key string) []TriggerSpec {
	if w.Triggers == nil {
		return nil
	}
	return w.Triggers[key]
}

// TriggerSpec names an action to run for a lifecycle event.
type TriggerSpec struct {
	Action string         `json:"action" yaml:"action"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// ActionSpec names an action to run on step entry, exit, or transition.
type ActionSpec struct {
	Action string         `json:"action" yaml:"action"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Step is a single step in a step workflow.
type Step struct {
	OnEnter []ActionSpec `json:"on_enter,omitempty" yaml:"on_enter,omitempty"`
	OnExit  []ActionSpec `json:"on_exit,omitempty" yaml:"on_exit,omitempty"`

	AllowedTools    ToolSelector `json:"allowed_tools,omitempty" yaml:"allowed_tools,omitempty"`
	BlockedTools    []string     `json:"blocked_tools,omitempty" yaml:"blocked_tools,omitempty"`
	AllowedMCPTools []string     `json:"allowed_mcp_tools,omitempty" yaml:"allowed_mcp_tools,omitempty"`
	BlockedMCPTools []string     `json:"blocked_mcp_tools,omitempty" yaml:"blocked_mcp_tools,omitempty"`

	// Rules are extra policy predicates attached programmatically by the
	// embedding layer. They are not decoded from YAML.
	Rules []Rule `json:"-" yaml:"-"`

	Transitions []Transition `json:"transitions,omitempty" yaml:"transitions,omitempty"`

	// ExitConditions is reserved for validity checks beyond step duration.
	// It is decoded and retained but carries no engine semantics.
	ExitConditions []string `json:"exit_conditions,omitempty" yaml:"exit_conditions,omitempty"`
}

// Transition moves the session to another step when its condition is
// satisfied against the session variables. Transitions are evaluated in
// order; the first satisfied condition wins.
type Transition struct {
	When         Condition
	To           string
	OnTransition *ActionSpec
}

// transitionDoc is the YAML shape of a Transition.
type transitionDoc struct {
	When         string      `yaml:"when"`
	To           string      `yaml:"to"`
	OnTransition *ActionSpec `yaml:"on_transition,omitempty"`
}

// UnmarshalYAML decodes a transition, parsing the when clause into a
// Condition. An unparseable clause becomes a never-satisfied condition so a
// bad definition cannot block the engine; Validate reports it separately.
func (t *Transition) UnmarshalYAML(node *yaml.Node) error {
	var doc transitionDoc
	if err := node.Decode(&doc); err != nil {
		return err
	}
	if doc.To == "" {
		return fmt.Errorf("transition missing target step")
	}
	t.To = doc.To
	t.OnTransition = doc.OnTransition
	t.When = ParseCondition(doc.When)
	return nil
}

// ToolSelector is either the sentinel "all" or a finite set of exact tool
// names. The zero value allows everything, matching a step that omits
// allowed_tools.
type ToolSelector struct {
	All   bool
	Names []string
}

// AllTools is the selector that allows every tool.
var AllTools = ToolSelector{All: true}

// Tools builds a selector from an explicit name list.
func Tools(names ...string) ToolSelector {
	return ToolSelector{Names: names}
}

// Allows reports whether the selector permits the tool name. An unset
// selector (neither All nor names) behaves as All.
func (s ToolSelector) Allows(name string) bool {
	if s.All || len(s.Names) == 0 {
		return true
	}
	for _, n := range s.Names {
		if n == name {
			return true
		}
	}
	return false
}

// IsRestricted reports whether the selector is a finite allow list.
func (s ToolSelector) IsRestricted() bool {
	return !s.All && len(s.Names) > 0
}

// UnmarshalYAML accepts either the string "all" or a sequence of names.
func (s *ToolSelector) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v string
		if err := node.Decode(&v); err != nil {
			return err
		}
		if !strings.EqualFold(v, "all") {
			return fmt.Errorf("allowed_tools: expected \"all\" or a list, got %q", v)
		}
		*s = AllTools
		return nil
	}
	var names []string
	if err := node.Decode(&names); err != nil {
		return err
	}
	*s = ToolSelector{Names: names}
	return nil
}

// MarshalYAML renders the selector back to its document form.
func (s ToolSelector) MarshalYAML() (any, error) {
	if s.All {
		return "all", nil
	}
	return s.Names, nil
}

// MatchMCPPattern reports whether a "<server>:<tool>" pattern matches the
// given server/tool pair. A pattern of "<server>:*" matches every tool on
// that server. Patterns without a colon never match.
func MatchMCPPattern(pattern, server, tool string) bool {
	patServer, patTool, found := strings.Cut(pattern, ":")
	if !found {
		return false
	}
	if patServer != server {
		return false
	}
	return patTool == "*" || patTool == tool
}

// MatchesAnyMCP reports whether any pattern in the list matches the pair.
func MatchesAnyMCP(patterns []string, server, tool string) bool {
	for _, p := range patterns {
		if MatchMCPPattern(p, server, tool) {
			return true
		}
	}
	return false
}
