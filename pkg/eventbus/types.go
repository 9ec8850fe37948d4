// Package eventbus fans out a per-run, append-only event log to zero or
// more live WebSocket subscribers, with a bounded catchup buffer for late
// joiners (spec.md §4.9).
package eventbus

import "time"

// Event is one structured entry in a run's timeline (spec.md §6).
type Event struct {
	RunID     string      `json:"runId"`
	Timestamp time.Time   `json:"timestamp"`
	Event     string      `json:"event"`
	Agent     string      `json:"agent"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Progress  *int        `json:"progress,omitempty"`
}

// Event vocabulary (spec.md §6), emitted in approximately this order.
const (
	EventPipelineStart    = "pipeline_start"
	EventCloneStart       = "clone_start"
	EventCloneDone        = "clone_done"
	EventDetectDone       = "detect_done"
	EventTestsDiscovered  = "tests_discovered"
	EventTestsStart       = "tests_start"
	EventTestsDone        = "tests_done"
	EventIterationStart   = "iteration_start"
	EventFixGenerateStart = "fix_generate_start"
	EventFixGenerateDone  = "fix_generate_done"
	EventFixApplied       = "fix_applied"
	EventBranchReady      = "branch_ready"
	EventCommitted        = "committed"
	EventPushed           = "pushed"
	EventCITriggerStart   = "ci_trigger_start"
	EventCITriggered      = "ci_triggered"
	EventCIPollStart      = "ci_poll_start"
	EventCIStatus         = "ci_status"
	EventPipelineDone     = "pipeline_done"
)
