package engine

// Decision is the engine's verdict on an event.
type Decision string

// Decision values.
const (
	// DecisionAllow lets the event proceed unchanged.
	DecisionAllow Decision = "allow"
	// DecisionBlock prevents the tool call from executing.
	DecisionBlock Decision = "block"
	// DecisionModify lets the event proceed with injected context.
	DecisionModify Decision = "modify"
)

// Response is the engine's answer to a single event. Reason is populated
// whenever the decision is not allow.
type Response struct {
	Decision Decision `json:"decision"`
	Context  string   `json:"context,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// Allow builds the default allow response.
func Allow() *Response {
	return &Response{Decision: DecisionAllow}
}

// Block builds a block response with a human-readable reason.
func Block(reason string) *Response {
	return &Response{Decision: DecisionBlock, Reason: reason}
}

// Modify builds a modify response carrying injected context.
func Modify(context, reason string) *Response {
	return &Response{Decision: DecisionModify, Context: context, Reason: reason}
}

// Allowed reports whether the event may proceed (allow or modify).
func (r *Response) Allowed() bool {
	return r.Decision != DecisionBlock
}
