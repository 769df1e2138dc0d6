// Package prometheus provides Prometheus metrics for the governance engine.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "warden"

var (
	// decisionsTotal counts gating decisions by workflow, event type, and decision.
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Total number of engine decisions",
		},
		[]string{"workflow", "event_type", "decision"},
	)

	// toolBlocksTotal counts blocked tool calls by workflow and step.
	toolBlocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_blocks_total",
			Help:      "Total number of blocked tool calls",
		},
		[]string{"workflow", "step"},
	)

	// transitionsTotal counts step transitions by workflow and target step.
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Total number of workflow step transitions",
		},
		[]string{"workflow", "to"},
	)

	// stuckRecoveriesTotal counts forced transitions to the reflect step.
	stuckRecoveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stuck_recoveries_total",
			Help:      "Total number of stuck-step recoveries into the reflect step",
		},
		[]string{"workflow"},
	)

	// actionDuration is a histogram of action execution duration in seconds.
	actionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Duration of action executor calls in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"action", "status"}, // status: success, error
	)

	// lifecycleTriggersTotal counts lifecycle trigger executions.
	lifecycleTriggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_triggers_total",
			Help:      "Total number of lifecycle trigger actions executed",
		},
		[]string{"workflow", "trigger_key", "status"},
	)

	// taskClaimsTotal counts task-claim enrichments by claiming tool.
	taskClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_claims_total",
			Help:      "Total number of detected task claims",
		},
		[]string{"tool"},
	)
)

// allMetrics lists every collector for registry registration.
var allMetrics = []prometheus.Collector{
	decisionsTotal,
	toolBlocksTotal,
	transitionsTotal,
	stuckRecoveriesTotal,
	actionDuration,
	lifecycleTriggersTotal,
	taskClaimsTotal,
}

// RecordDecision records an engine decision.
func RecordDecision(workflow, eventType, decision string) {
	decisionsTotal.WithLabelValues(workflow, eventType, decision).Inc()
}

// RecordToolBlock records a blocked tool call.
func RecordToolBlock(workflow, step string) {
	toolBlocksTotal.WithLabelValues(workflow, step).Inc()
}

// RecordTransition records a step transition.
func RecordTransition(workflow, to string) {
	transitionsTotal.WithLabelValues(workflow, to).Inc()
}

// RecordStuckRecovery records a forced reflect transition.
func RecordStuckRecovery(workflow string) {
	stuckRecoveriesTotal.WithLabelValues(workflow).Inc()
}

// RecordAction records an action execution with its duration.
func RecordAction(action, status string, durationSeconds float64) {
	actionDuration.WithLabelValues(action, status).Observe(durationSeconds)
}

// RecordLifecycleTrigger records a lifecycle trigger execution.
func RecordLifecycleTrigger(workflow, triggerKey, status string) {
	lifecycleTriggersTotal.WithLabelValues(workflow, triggerKey, status).Inc()
}

// RecordTaskClaim records a task-claim enrichment.
func RecordTaskClaim(tool string) {
	taskClaimsTotal.WithLabelValues(tool).Inc()
}
