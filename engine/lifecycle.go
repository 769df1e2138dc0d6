package engine

import (
	"context"
	"strings"

	"github.com/gobbyhq/warden/events"
	"github.com/gobbyhq/warden/logger"
	prom "github.com/gobbyhq/warden/metrics/prometheus"
	"github.com/gobbyhq/warden/workflow"
)

// EvaluateLifecycleTriggers runs the ordered trigger actions registered for
// the event's lifecycle key. Lifecycle workflows are advisory: the response
// is always allow, with any injected messages joined into its context. A
// failing trigger is logged and contributes no message; subsequent triggers
// still run.
func (e *Engine) EvaluateLifecycleTriggers(
	ctx context.Context,
	w *workflow.LifecycleWorkflow,
	evt *events.Event,
) *Response {
	key := evt.TriggerKey()
	if key == "" {
		return Allow()
	}
	specs := w.TriggersFor(key)
	if len(specs) == 0 {
		return Allow()
	}

	var msgs []string
	for _, spec := range specs {
		result, err := e.exec.Execute(ctx, spec.Action, spec.Params)
		if err != nil {
			prom.RecordLifecycleTrigger(w.Name(), key, "error")
			logger.ActionFailed(evt.SessionID, spec.Action, err)
			continue
		}
		prom.RecordLifecycleTrigger(w.Name(), key, "success")
		if msg, ok := result[ResultInjectMessage].(string); ok && msg != "" {
			msgs = append(msgs, msg)
		}
	}

	resp := Allow()
	if len(msgs) > 0 {
		resp.Context = strings.Join(msgs, "\n")
	}
	return resp
}
