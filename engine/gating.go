package engine

import (
	"fmt"
	"slices"

	"github.com/gobbyhq/warden/events"
	"github.com/gobbyhq/warden/logger"
	"github.com/gobbyhq/warden/workflow"
)

// evaluateToolGating decides whether a pending tool call may proceed under
// the current step's policy. Precedence, in order: the approval gate blocks
// everything; MCP block patterns beat MCP allow patterns; blocked_tools
// beats allowed_tools (including the All sentinel); step rules run last.
//
// A payload from which no MCP server/tool pair can be extracted is treated
// as a plain tool call and checked by exact name only.
func (e *Engine) evaluateToolGating(
	w *workflow.StepWorkflow,
	state *workflow.State,
	evt *events.Event,
) *Response {
	if state.ApprovalPending {
		return Block(approvalReason(state))
	}

	step := w.Step(state.Step)
	if step == nil {
		// Unknown step is normal control flow, not an error: fail open.
		return Allow()
	}

	toolName := evt.ToolName()

	if server, tool, ok := evt.MCPCall(); ok {
		pattern := server + ":" + tool
		if workflow.MatchesAnyMCP(step.BlockedMCPTools, server, tool) {
			resp := Block(fmt.Sprintf("MCP tool %s blocked in step %q", pattern, state.Step))
			logger.Decision(state.SessionID, pattern, string(resp.Decision), resp.Reason)
			return resp
		}
		if len(step.AllowedMCPTools) > 0 && !workflow.MatchesAnyMCP(step.AllowedMCPTools, server, tool) {
			resp := Block(fmt.Sprintf("MCP tool %s not in allowed list for step %q", pattern, state.Step))
			logger.Decision(state.SessionID, pattern, string(resp.Decision), resp.Reason)
			return resp
		}
		// MCP policy passed; the wrapper tool name still goes through the
		// step-level checks below.
	}

	if toolName != "" {
		if slices.Contains(step.BlockedTools, toolName) {
			resp := Block(fmt.Sprintf("tool %q blocked in step %q", toolName, state.Step))
			logger.Decision(state.SessionID, toolName, string(resp.Decision), resp.Reason)
			return resp
		}
		if !step.AllowedTools.Allows(toolName) {
			resp := Block(fmt.Sprintf("tool %q not in allowed list for step %q", toolName, state.Step))
			logger.Decision(state.SessionID, toolName, string(resp.Decision), resp.Reason)
			return resp
		}
	}

	for _, rule := range step.Rules {
		blocked, reason := rule.Evaluate(evt, state)
		if blocked {
			if reason == "" {
				reason = fmt.Sprintf("tool %q blocked in step %q by rule %q", toolName, state.Step, rule.Name())
			}
			logger.Decision(state.SessionID, toolName, string(DecisionBlock), reason)
			return Block(reason)
		}
	}

	logger.Decision(state.SessionID, toolName, string(DecisionAllow), "")
	return Allow()
}

// approvalReason describes the pending approval gate blocking the call.
func approvalReason(state *workflow.State) string {
	switch {
	case state.ApprovalPrompt != "":
		return fmt.Sprintf("approval pending: %s", state.ApprovalPrompt)
	case state.ApprovalConditionID != "":
		return fmt.Sprintf("approval pending for condition %s", state.ApprovalConditionID)
	default:
		return "approval pending"
	}
}
