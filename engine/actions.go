package engine

import (
	"context"

	"github.com/gobbyhq/warden/logger"
	prom "github.com/gobbyhq/warden/metrics/prometheus"
	"github.com/gobbyhq/warden/workflow"
)

// runActions executes action specs in order against the session state.
// Failures are logged and skipped; execution always continues with the
// remaining actions. Returns injected messages in execution order and
// merges any set_variables results into the state.
func (e *Engine) runActions(
	ctx context.Context,
	state *workflow.State,
	specs []workflow.ActionSpec,
) []string {
	var msgs []string
	for _, spec := range specs {
		start := e.now()
		result, err := e.exec.Execute(ctx, spec.Action, spec.Params)
		elapsed := e.now().Sub(start).Seconds()
		if err != nil {
			prom.RecordAction(spec.Action, "error", elapsed)
			logger.ActionFailed(state.SessionID, spec.Action, err)
			continue
		}
		prom.RecordAction(spec.Action, "success", elapsed)

		if msg, ok := result[ResultInjectMessage].(string); ok && msg != "" {
			msgs = append(msgs, msg)
		}
		if vars, ok := result[ResultSetVariables].(map[string]any); ok {
			for name, value := range vars {
				state.SetVariable(name, value)
			}
		}
	}
	return msgs
}

func logSaveFailure(sessionID string, err error) {
	logger.Warn("state save failed, continuing", "session_id", sessionID, "error", err)
}
