package workflow

import (
	"regexp"

	"github.com/jmespath/go-jmespath"

	"github.com/gobbyhq/warden/logger"
)

// Condition is a predicate over session variables. Implementations must
// treat missing or malformed data as not satisfied — condition evaluation
// can never fail in a way that blocks the engine.
type Condition interface {
	// Evaluate reports whether the condition holds for the variables.
	Evaluate(vars map[string]any) bool
	// String returns the source form of the condition.
	String() string
}

var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParseCondition parses a when clause. A bare identifier becomes a truthy
// variable check; anything else is compiled as a JMESPath expression over
// the variables. An empty clause never matches, and a clause that fails to
// compile degrades to never-matching (logged once at parse time).
func ParseCondition(clause string) Condition {
	if clause == "" {
		return neverCondition{}
	}
	if identifierRe.MatchString(clause) {
		return VarCondition(clause)
	}
	compiled, err := jmespath.Compile(clause)
	if err != nil {
		logger.Warn("invalid transition condition, treating as never satisfied",
			"condition", clause, "error", err)
		return neverCondition{src: clause}
	}
	return &ExprCondition{src: clause, expr: compiled}
}

// Var is a convenience constructor for a truthy-variable condition.
func Var(name string) Condition { return VarCondition(name) }

// VarCondition is satisfied when the named variable is truthy.
type VarCondition string

// Evaluate implements Condition.
func (c VarCondition) Evaluate(vars map[string]any) bool {
	return Truthy(vars[string(c)])
}

// String implements Condition.
func (c VarCondition) String() string { return string(c) }

// ExprCondition evaluates a compiled JMESPath expression against the
// variables and is satisfied when the result is truthy.
type ExprCondition struct {
	src  string
	expr *jmespath.JMESPath
}

// Expr compiles a JMESPath condition. Invalid expressions degrade to a
// never-satisfied condition.
func Expr(expression string) Condition {
	compiled, err := jmespath.Compile(expression)
	if err != nil {
		logger.Warn("invalid condition expression", "expression", expression, "error", err)
		return neverCondition{src: expression}
	}
	return &ExprCondition{src: expression, expr: compiled}
}

// Evaluate implements Condition. Search errors count as not satisfied.
func (c *ExprCondition) Evaluate(vars map[string]any) bool {
	if vars == nil {
		vars = map[string]any{}
	}
	result, err := c.expr.Search(vars)
	if err != nil {
		return false
	}
	return Truthy(result)
}

// String implements Condition.
func (c *ExprCondition) String() string { return c.src }

// neverCondition is the degraded form of an empty or unparseable clause.
type neverCondition struct{ src string }

func (neverCondition) Evaluate(map[string]any) bool { return false }
func (c neverCondition) String() string             { return c.src }

// Truthy reports whether a JSON-representable value counts as true:
// booleans by value, strings when non-empty and not "false"/"0", numbers
// when non-zero, collections when non-empty, nil never.
func Truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != "" && val != "false" && val != "0"
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case float32:
		return val != 0
	case []any:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}
