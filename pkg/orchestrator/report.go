package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/codeready-toolchain/healer/pkg/eventbus"
	"github.com/codeready-toolchain/healer/pkg/runmodel"
	"github.com/codeready-toolchain/healer/pkg/scoring"
)

// finalize computes the score, builds the FinalReport, stores it on the
// Run in the registry, writes it to results/{runId}.json, and emits the
// closing pipeline_done event (spec.md §4.8, §4.9, §8 invariant 5).
func (o *Orchestrator) finalize(state *runState, status runmodel.FinalStatus) {
	completedAt := time.Now()
	totalTimeMs := completedAt.Sub(state.run.StartedAt).Milliseconds()

	iterationCount := 0
	if len(state.timeline) > 0 {
		iterationCount = len(state.timeline) - 1
	}

	breakdown := scoring.Score(scoring.Metrics{
		TotalTimeMs:    totalTimeMs,
		CommitCount:    state.commitCount,
		FixCount:       countFixed(state.appliedFixes),
		IterationCount: iterationCount,
	})

	report := &runmodel.FinalReport{
		RunID:          state.run.ID,
		RepoURL:        state.run.RepoURL,
		TeamName:       state.run.TeamName,
		LeaderName:     state.run.LeaderName,
		Branch:         state.run.Branch,
		TotalFailures:  state.initialErrors,
		TotalFixes:     countFixed(state.appliedFixes),
		TotalCommits:   state.commitCount,
		FinalStatus:    status,
		TotalTime:      humanDuration(totalTimeMs),
		TotalTimeMs:    totalTimeMs,
		ScoreBreakdown: breakdown,
		Fixes:          toReportedFixes(state.appliedFixes),
		Timeline:       state.timeline,
		GeneratedAt:    completedAt,
	}

	runStatus := runmodel.RunStatusCompleted
	if status == runmodel.FinalStatusFailed {
		runStatus = runmodel.RunStatusFailed
	}

	if err := o.Registry.Update(state.run.ID, func(r *runmodel.Run) {
		r.Status = runStatus
		r.CompletedAt = &completedAt
		r.Report = report
	}); err != nil {
		o.Logger.Error("orchestrator: failed to record final report", "runId", state.run.ID, "error", err)
	}

	if err := o.writeReport(state.run.ID, report); err != nil {
		o.Logger.Error("orchestrator: failed to persist report to disk", "runId", state.run.ID, "error", err)
	}

	o.Bus.Publish(eventbus.Event{
		RunID:     state.run.ID,
		Timestamp: completedAt,
		Event:     eventbus.EventPipelineDone,
		Agent:     agentOrchestrator,
		Message:   "run finished: " + string(status),
		Data:      report,
	})
}

func (o *Orchestrator) writeReport(runID string, report *runmodel.FinalReport) error {
	dir := o.ResultsDir
	if dir == "" {
		dir = "results"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	path := filepath.Join(dir, runID+".json")
	return os.WriteFile(path, data, 0o644)
}

func toReportedFixes(fixes []runmodel.AppliedFix) []runmodel.ReportedFix {
	out := make([]runmodel.ReportedFix, 0, len(fixes))
	for _, f := range fixes {
		out = append(out, runmodel.ReportedFix{
			File:          f.File,
			BugType:       f.Kind,
			LineNumber:    f.Line,
			CommitMessage: f.CommitMessage,
			Description:   f.Description,
			Status:        f.Status,
		})
	}
	return out
}

func humanDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) - minutes*60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
