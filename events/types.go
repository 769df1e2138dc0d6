// Package events defines the inbound event model consumed by the workflow
// engine. Events are constructed by the routing layer from raw agent hook
// payloads; this package only describes their shape and common accessors.
package events

import "time"

// EventType identifies the kind of agent lifecycle or tool event.
type EventType string

const (
	// EventSessionStart marks the start of an agent session.
	EventSessionStart EventType = "session.start"
	// EventSessionEnd marks the end of an agent session.
	EventSessionEnd EventType = "session.end"

	// EventBeforeAgentTurn fires before the agent begins a turn.
	EventBeforeAgentTurn EventType = "agent.turn.before"
	// EventAfterAgentTurn fires after the agent completes a turn.
	EventAfterAgentTurn EventType = "agent.turn.after"

	// EventBeforeTool fires before a tool call executes. This is the only
	// event type on which the engine may gate (block) the call.
	EventBeforeTool EventType = "tool.before"
	// EventAfterTool fires after a tool call completes, success or failure.
	EventAfterTool EventType = "tool.after"

	// EventPreCompact fires before the agent's context window is compacted.
	EventPreCompact EventType = "context.pre_compact"

	// EventSubagentStart marks the start of a spawned subagent.
	EventSubagentStart EventType = "subagent.start"
	// EventSubagentStop marks the stop of a spawned subagent.
	EventSubagentStop EventType = "subagent.stop"

	// EventNotification carries a provider notification.
	EventNotification EventType = "notification"

	// Provider-specific event types. Not every provider emits these; the
	// engine treats unknown lifecycle keys as having no triggers.

	// EventBeforeToolSelection fires before the model selects a tool.
	EventBeforeToolSelection EventType = "tool.selection.before"
	// EventBeforeModel fires before a model invocation.
	EventBeforeModel EventType = "model.before"
	// EventAfterModel fires after a model invocation.
	EventAfterModel EventType = "model.after"
	// EventPermissionRequest fires when the provider asks for permission.
	EventPermissionRequest EventType = "permission.request"
)

// Event is a single inbound event for one session.
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id"`
	Source    string         `json:"source,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// IsBeforeTool reports whether the event gates a pending tool call.
func (e *Event) IsBeforeTool() bool {
	return e.Type == EventBeforeTool
}

// IsAfterTool reports whether the event describes a completed tool call.
func (e *Event) IsAfterTool() bool {
	return e.Type == EventAfterTool
}

// triggerKeys maps event types to the lifecycle trigger keys used in
// workflow definitions (e.g. "on_session_start").
var triggerKeys = map[EventType]string{
	EventSessionStart:        "on_session_start",
	EventSessionEnd:          "on_session_end",
	EventBeforeAgentTurn:     "on_before_agent_turn",
	EventAfterAgentTurn:      "on_after_agent_turn",
	EventBeforeTool:          "on_before_tool",
	EventAfterTool:           "on_after_tool",
	EventPreCompact:          "on_pre_compact",
	EventSubagentStart:       "on_subagent_start",
	EventSubagentStop:        "on_subagent_stop",
	EventNotification:        "on_notification",
	EventBeforeToolSelection: "on_before_tool_selection",
	EventBeforeModel:         "on_before_model",
	EventAfterModel:          "on_after_model",
	EventPermissionRequest:   "on_permission_request",
}

// TriggerKey returns the lifecycle trigger key for the event type, or ""
// if the event type has no lifecycle mapping.
func (e *Event) TriggerKey() string {
	return triggerKeys[e.Type]
}

// ToolName returns the raw tool name from the event payload, or "".
func (e *Event) ToolName() string {
	return stringField(e.Data, "tool_name")
}

// ToolInput returns the tool input payload map, or nil.
func (e *Event) ToolInput() map[string]any {
	m, _ := e.Data["tool_input"].(map[string]any)
	return m
}

// MCPCall extracts the proxied MCP server/tool pair from the payload.
// Two shapes are recognized: top-level mcp_server/mcp_tool fields, and the
// same pair nested under tool_input as server_name/tool_name. Returns
// ok=false when neither shape yields both names.
func (e *Event) MCPCall() (server, tool string, ok bool) {
	server = stringField(e.Data, "mcp_server")
	tool = stringField(e.Data, "mcp_tool")
	if server != "" && tool != "" {
		return server, tool, true
	}
	if input := e.ToolInput(); input != nil {
		server = stringField(input, "server_name")
		tool = stringField(input, "tool_name")
		if server != "" && tool != "" {
			return server, tool, true
		}
	}
	return "", "", false
}

// ToolArguments returns the arguments of a proxied tool call. When the
// tool input carries a nested "arguments" map (call_tool convention) that
// map is returned, otherwise the tool input itself.
func (e *Event) ToolArguments() map[string]any {
	input := e.ToolInput()
	if input == nil {
		return nil
	}
	if args, ok := input["arguments"].(map[string]any); ok {
		return args
	}
	return input
}

// ToolSucceeded reports whether an after-tool event describes a successful
// outcome: no top-level error key and a status other than "error".
func (e *Event) ToolSucceeded() bool {
	if _, hasErr := e.Data["error"]; hasErr {
		return false
	}
	return stringField(e.Data, "status") != "error"
}

// ToolResult returns the tool's result payload map, checking the
// tool_response and result keys, or nil.
func (e *Event) ToolResult() map[string]any {
	if m, ok := e.Data["tool_response"].(map[string]any); ok {
		return m
	}
	if m, ok := e.Data["result"].(map[string]any); ok {
		return m
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}
