package definitions

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// stepSchema validates the document shape of a step workflow before decoding.
const stepSchema = `{
  "type": "object",
  "required": ["name", "steps"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "kind": {"enum": ["steps"]},
    "steps": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "properties": {
          "on_enter": {"$ref": "#/definitions/actions"},
          "on_exit": {"$ref": "#/definitions/actions"},
          "allowed_tools": {
            "oneOf": [
              {"type": "string"},
              {"type": "array", "items": {"type": "string"}}
            ]
          },
          "blocked_tools": {"type": "array", "items": {"type": "string"}},
          "allowed_mcp_tools": {"type": "array", "items": {"type": "string"}},
          "blocked_mcp_tools": {"type": "array", "items": {"type": "string"}},
          "exit_conditions": {"type": "array", "items": {"type": "string"}},
          "transitions": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["to"],
              "properties": {
                "when": {"type": "string"},
                "to": {"type": "string", "minLength": 1},
                "on_transition": {"$ref": "#/definitions/action"}
              }
            }
          }
        },
        "additionalProperties": false
      }
    }
  },
  "definitions": {
    "action": {
      "type": "object",
      "required": ["action"],
      "properties": {
        "action": {"type": "string", "minLength": 1},
        "params": {"type": "object"}
      }
    },
    "actions": {"type": "array", "items": {"$ref": "#/definitions/action"}}
  }
}`

// lifecycleSchema validates the document shape of a lifecycle workflow.
const lifecycleSchema = `{
  "type": "object",
  "required": ["name", "kind", "triggers"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "kind": {"enum": ["lifecycle"]},
    "triggers": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["action"],
          "properties": {
            "action": {"type": "string", "minLength": 1},
            "params": {"type": "object"}
          }
        }
      }
    }
  }
}`

var (
	compiledStepSchema      = gojsonschema.NewStringLoader(stepSchema)
	compiledLifecycleSchema = gojsonschema.NewStringLoader(lifecycleSchema)
)

// validateDocument checks a decoded YAML document against the JSON schema
// for its kind. The document must already be normalized to JSON-compatible
// types (string-keyed maps).
func validateDocument(doc map[string]any, kind string) error {
	schema := compiledStepSchema
	if kind == "lifecycle" {
		schema = compiledLifecycleSchema
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: document is not JSON-representable: %v", ErrInvalidDefinition, err)
	}

	result, err := gojsonschema.Validate(schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: schema validation failed: %v", ErrInvalidDefinition, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDefinition, strings.Join(msgs, "; "))
}
