package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/gobbyhq/warden/events"
	"github.com/gobbyhq/warden/logger"
	prom "github.com/gobbyhq/warden/metrics/prometheus"
	"github.com/gobbyhq/warden/workflow"
)

// TaskServerName is the reserved MCP server identifier for the platform's
// task-management capability. Only calls to this server participate in
// task-claim enrichment.
const TaskServerName = "gobby-tasks"

// Task-management tools whose successful calls count as claiming a task.
const (
	toolCreateTask = "create_task"
	toolUpdateTask = "update_task"
	toolClaimTask  = "claim_task"
)

// detectTaskClaim inspects a completed tool call for task-claim side
// effects and records them on the session state. It is side-effecting only:
// it never changes the event decision, and any unrecognized payload shape
// simply results in no mutation.
func (e *Engine) detectTaskClaim(ctx context.Context, state *workflow.State, evt *events.Event) {
	server, tool, ok := evt.MCPCall()
	if !ok || server != TaskServerName {
		return
	}
	if !evt.ToolSucceeded() {
		return
	}

	args := evt.ToolArguments()
	switch tool {
	case toolCreateTask:
		state.MarkTaskClaimed("")
	case toolUpdateTask:
		if status, _ := args["status"].(string); status != "in_progress" {
			return
		}
		state.MarkTaskClaimed("")
	case toolClaimTask:
		state.MarkTaskClaimed(resolveClaimedTaskID(args, evt.ToolResult()))
	default:
		// Read-only and unrecognized task tools never claim.
		return
	}

	prom.RecordTaskClaim(tool)
	logger.Debug("task claim detected", "session_id", state.SessionID, "tool", tool,
		"task_id", state.ClaimedTaskID)
	e.save(ctx, state)
}

// resolveClaimedTaskID resolves the claimed task reference to its canonical
// id. The reference may arrive as "#<seq>", a bare sequence number, or a
// UUID; the canonical UUID is preferred from the successful tool result,
// then from the argument itself. Resolution is best-effort: an unresolvable
// reference is stored as given so the claim itself is never lost.
func resolveClaimedTaskID(args, result map[string]any) string {
	if id := uuidFromResult(result); id != "" {
		return id
	}

	ref, _ := args["task_id"].(string)
	if ref == "" {
		ref, _ = args["task"].(string)
	}
	if _, err := uuid.Parse(ref); err == nil {
		return ref
	}
	return ref
}

// uuidFromResult extracts a canonical task UUID from a tool result payload,
// checking task.id then id.
func uuidFromResult(result map[string]any) string {
	if result == nil {
		return ""
	}
	if task, ok := result["task"].(map[string]any); ok {
		if id, ok := task["id"].(string); ok {
			if _, err := uuid.Parse(id); err == nil {
				return id
			}
		}
	}
	if id, ok := result["id"].(string); ok {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return ""
}
