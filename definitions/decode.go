package definitions

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gobbyhq/warden/workflow"
)

// Decode parses a YAML workflow definition document. The optional "kind"
// field selects the variant and defaults to "steps". The document is
// schema-validated before decoding and structurally validated after, so a
// definition that loads successfully is safe for the engine to execute.
func Decode(data []byte) (workflow.Definition, error) {
	var head struct {
		Name string `yaml:"name"`
		Kind string `yaml:"kind"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if head.Kind == "" {
		head.Kind = string(workflow.KindSteps)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := validateDocument(doc, head.Kind); err != nil {
		return nil, err
	}

	var def workflow.Definition
	switch workflow.Kind(head.Kind) {
	case workflow.KindSteps:
		var w workflow.StepWorkflow
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
		def = &w
	case workflow.KindLifecycle:
		var w workflow.LifecycleWorkflow
		if err := yaml.Unmarshal(data, &w); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
		def = &w
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidDefinition, head.Kind)
	}

	if result := workflow.Validate(def); result.HasErrors() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, result.Errors)
	}
	return def, nil
}
