package workflow

import (
	"fmt"
	"strings"
)

// ValidationResult holds errors and warnings from definition validation.
type ValidationResult struct {
	Errors   []string // Blocking: missing steps, dangling transition targets
	Warnings []string // Non-blocking: cycles, missing reflect step
}

// HasErrors returns true if there are blocking validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Validate checks a definition for structural problems. Step workflows are
// checked for dangling transition targets, malformed MCP patterns, and
// unconditional self-loops; lifecycle workflows for empty trigger actions.
func Validate(def Definition) *ValidationResult {
	r := &ValidationResult{}
	if def.Name() == "" {
		r.Errors = append(r.Errors, "workflow name must be non-empty")
	}

	switch w := def.(type) {
	case *StepWorkflow:
		validateSteps(w, r)
	case *LifecycleWorkflow:
		validateTriggers(w, r)
	default:
		r.Errors = append(r.Errors, fmt.Sprintf("unknown definition kind %q", def.Kind()))
	}
	return r
}

func validateSteps(w *StepWorkflow, r *ValidationResult) {
	if len(w.Steps) == 0 {
		r.Errors = append(r.Errors, "step workflow must define at least one step")
		return
	}
	if !w.HasReflectStep() {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"no %q step defined: stuck recovery is disabled for this workflow", ReflectStepName))
	}

	for name, step := range w.Steps {
		if step == nil {
			r.Errors = append(r.Errors, fmt.Sprintf("steps[%q] is empty", name))
			continue
		}
		validateStepTransitions(w, name, step, r)
		validateMCPPatterns(name, "allowed_mcp_tools", step.AllowedMCPTools, r)
		validateMCPPatterns(name, "blocked_mcp_tools", step.BlockedMCPTools, r)
		validateActionSpecs(name, "on_enter", step.OnEnter, r)
		validateActionSpecs(name, "on_exit", step.OnExit, r)
	}

	for _, cycle := range detectCycles(w) {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"steps contain a transition cycle: %s (bounded at runtime by the auto-transition depth limit)", cycle))
	}
}

func validateStepTransitions(w *StepWorkflow, name string, step *Step, r *ValidationResult) {
	for i, tr := range step.Transitions {
		if tr.To == "" {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"steps[%q].transitions[%d] missing target step", name, i))
			continue
		}
		if w.Step(tr.To) == nil {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"steps[%q].transitions[%d] target %q does not exist", name, i, tr.To))
		}
		if tr.When == nil || tr.When.String() == "" {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"steps[%q].transitions[%d] has no condition and will never fire", name, i))
		}
	}
}

func validateMCPPatterns(step, field string, patterns []string, r *ValidationResult) {
	for _, p := range patterns {
		if !strings.Contains(p, ":") {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"steps[%q].%s pattern %q must be \"server:tool\" or \"server:*\"", step, field, p))
		}
	}
}

func validateActionSpecs(step, field string, specs []ActionSpec, r *ValidationResult) {
	for i, spec := range specs {
		if spec.Action == "" {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"steps[%q].%s[%d] missing action name", step, field, i))
		}
	}
}

func validateTriggers(w *LifecycleWorkflow, r *ValidationResult) {
	if len(w.Triggers) == 0 {
		r.Warnings = append(r.Warnings, "lifecycle workflow defines no triggers")
	}
	for key, specs := range w.Triggers {
		if !strings.HasPrefix(key, "on_") {
			r.Warnings = append(r.Warnings, fmt.Sprintf(
				"trigger key %q does not match any lifecycle event", key))
		}
		for i, spec := range specs {
			if spec.Action == "" {
				r.Errors = append(r.Errors, fmt.Sprintf(
					"triggers[%q][%d] missing action name", key, i))
			}
		}
	}
}

// detectCycles uses DFS over transition targets to find cycles.
func detectCycles(w *StepWorkflow) []string {
	const (
		white = iota // unvisited
		gray         // in current DFS path
		black        // fully explored
	)

	color := make(map[string]int, len(w.Steps))
	var cycles []string

	var dfs func(name string)
	dfs = func(name string) {
		color[name] = gray
		step := w.Step(name)
		if step == nil {
			color[name] = black
			return
		}
		for _, tr := range step.Transitions {
			switch color[tr.To] {
			case gray:
				cycles = append(cycles, fmt.Sprintf("%s -> %s", name, tr.To))
			case white:
				dfs(tr.To)
			}
		}
		color[name] = black
	}

	for name := range w.Steps {
		if color[name] == white {
			dfs(name)
		}
	}

	return cycles
}
