// Package orchestrator drives the heal loop's state machine: analyze, fix,
// commit, monitor, repeated under a retry budget, producing a FinalReport
// (spec.md §4.8).
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/healer/pkg/analyzer"
	"github.com/codeready-toolchain/healer/pkg/classifier"
	"github.com/codeready-toolchain/healer/pkg/eventbus"
	"github.com/codeready-toolchain/healer/pkg/fixgen"
	"github.com/codeready-toolchain/healer/pkg/gitops"
	"github.com/codeready-toolchain/healer/pkg/patcher"
	"github.com/codeready-toolchain/healer/pkg/registry"
	"github.com/codeready-toolchain/healer/pkg/runmodel"
)

// agentOrchestrator names the Orchestrator as an event source, distinct
// from the per-agent names used on events each agent itself narrates.
const agentOrchestrator = "orchestrator"

// Orchestrator owns the run registry, the event bus, and every agent
// dependency needed to drive a run's heal loop from submission to report.
type Orchestrator struct {
	Registry     *registry.Registry
	Bus          *eventbus.Bus
	Analyzer     *analyzer.Analyzer
	FixGenerator *fixgen.Generator
	GitHubToken  string
	CITimeout    time.Duration

	RetryLimit     int
	ResultsDir     string
	WorkingDirRoot string

	Logger *slog.Logger
}

// New constructs an Orchestrator. retryLimit falls back to 5 if non-positive
// (spec.md §4.8 default).
func New(reg *registry.Registry, bus *eventbus.Bus, an *analyzer.Analyzer, fg *fixgen.Generator, githubToken string, retryLimit int, ciTimeout time.Duration, resultsDir, workingDirRoot string, logger *slog.Logger) *Orchestrator {
	if retryLimit <= 0 {
		retryLimit = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		Registry:       reg,
		Bus:            bus,
		Analyzer:       an,
		FixGenerator:   fg,
		GitHubToken:    githubToken,
		CITimeout:      ciTimeout,
		RetryLimit:     retryLimit,
		ResultsDir:     resultsDir,
		WorkingDirRoot: workingDirRoot,
		Logger:         logger,
	}
}

// Submit validates a run request, registers a new Run in the running state,
// launches its pipeline in the background, and returns immediately — the
// submit endpoint must never block on the pipeline (spec.md §6, §7).
func (o *Orchestrator) Submit(ctx context.Context, repoURL, teamName, leaderName string) (runmodel.Run, error) {
	parts, err := gitops.ParseRepoURL(repoURL)
	if err != nil {
		return runmodel.Run{}, fmt.Errorf("orchestrator: %w", err)
	}

	branch := runmodel.DeriveBranchName(teamName, leaderName)
	run := &runmodel.Run{
		ID:         uuid.NewString(),
		RepoURL:    repoURL,
		TeamName:   teamName,
		LeaderName: leaderName,
		Branch:     branch,
		Status:     runmodel.RunStatusRunning,
		StartedAt:  time.Now(),
	}
	if err := o.Registry.Create(run); err != nil {
		return runmodel.Run{}, fmt.Errorf("orchestrator: register run: %w", err)
	}

	go o.execute(*run, parts.Owner, parts.Repo)

	return *run, nil
}

// execute runs one run's full heal loop to completion. It never lets a
// panic escape: any pipeline-fatal exception is recovered, recorded as an
// ERROR iteration, and the run is still finalized (spec.md §7).
func (o *Orchestrator) execute(run runmodel.Run, owner, repo string) {
	workingTree := filepath.Join(o.WorkingDirRoot, run.ID)
	state := &runState{run: run, owner: owner, repo: repo, workingTree: workingTree}

	defer func() {
		if err := os.RemoveAll(workingTree); err != nil {
			o.Logger.Warn("orchestrator: working tree cleanup failed", "runId", run.ID, "error", err)
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			o.Logger.Error("orchestrator: pipeline panic", "runId", run.ID, "panic", r)
			state.timeline = append(state.timeline, runmodel.IterationRecord{
				Iteration: len(state.timeline),
				Status:    runmodel.IterationError,
				Timestamp: time.Now(),
			})
			o.finalize(state, runmodel.FinalStatusFailed)
		}
	}()

	o.publish(run.ID, eventbus.EventPipelineStart, agentOrchestrator, "run started", nil)

	o.runLoop(state)
}

// runState is the Orchestrator's working set for one run, mutated in place
// as the loop progresses.
type runState struct {
	run         runmodel.Run
	owner       string
	repo        string
	workingTree string

	timeline      []runmodel.IterationRecord
	appliedFixes  []runmodel.AppliedFix
	commitCount   int
	initialErrors int
}

func (o *Orchestrator) runLoop(state *runState) {
	ctx := context.Background()

	o.publish(state.run.ID, eventbus.EventCloneStart, "analyzer", "cloning repository", nil)
	if err := analyzer.Clone(ctx, state.run.RepoURL, state.workingTree, o.GitHubToken, o.Logger); err != nil {
		o.failPipeline(state, "analyzer", "clone failed: "+err.Error())
		return
	}
	o.publish(state.run.ID, eventbus.EventCloneDone, "analyzer", "clone complete", nil)

	lang := analyzer.DetectLanguage(state.workingTree)
	o.publish(state.run.ID, eventbus.EventDetectDone, "analyzer", "language detected: "+string(lang), nil)

	testRun, err := o.runTests(ctx, state)
	if err != nil {
		o.failPipeline(state, "analyzer", "test execution failed: "+err.Error())
		return
	}

	records := classifier.Classify(testRun.RawLog)
	state.initialErrors = len(records)
	state.timeline = append(state.timeline, runmodel.IterationRecord{
		Iteration: 0,
		Status:    iterationStatusForTests(testRun.Passed),
		Timestamp: time.Now(),
	})

	if testRun.Passed {
		o.finalize(state, runmodel.FinalStatusPassed)
		return
	}

	committer := gitops.NewCommitter(state.workingTree, o.GitHubToken)

	for iteration := 1; iteration <= o.RetryLimit; iteration++ {
		o.publish(state.run.ID, eventbus.EventIterationStart, agentOrchestrator, fmt.Sprintf("iteration %d", iteration), iteration)

		if o.runIteration(ctx, state, iteration, records, testRun, committer) {
			return
		}

		testRun, records, err = o.retest(ctx, state)
		if err == errStop {
			return
		}
		if err != nil {
			o.failPipeline(state, "analyzer", "re-test failed: "+err.Error())
			return
		}
	}

	o.finalize(state, runmodel.FinalStatusFailed)
}

// runIteration runs one ITERATE(i)+MONITOR(i) pass. It returns true if the
// run reached a terminal state (the caller must stop looping).
func (o *Orchestrator) runIteration(ctx context.Context, state *runState, iteration int, records []runmodel.ErrorRecord, testRun analyzer.TestRun, committer *gitops.Committer) bool {
	o.publish(state.run.ID, eventbus.EventFixGenerateStart, "fixgen", "generating fixes", iteration)
	proposals, err := o.FixGenerator.Generate(ctx, testRun.RawLog, state.workingTree, records)
	if err != nil {
		o.failPipeline(state, "fixgen", "fix generation failed: "+err.Error())
		return true
	}
	o.publish(state.run.ID, eventbus.EventFixGenerateDone, "fixgen", fmt.Sprintf("%d proposal(s)", len(proposals)), iteration)

	if len(proposals) == 0 {
		o.appendIteration(state, iteration, runmodel.IterationNoFixes)
		o.finalize(state, runmodel.FinalStatusFailed)
		return true
	}

	applied := patcher.Apply(state.workingTree, proposals)
	state.appliedFixes = append(state.appliedFixes, applied...)
	o.publish(state.run.ID, eventbus.EventFixApplied, "patcher", fmt.Sprintf("%d fix(es) applied", countFixed(applied)), iteration)

	if countFixed(applied) == 0 {
		o.appendIteration(state, iteration, runmodel.IterationApplyFailed)
		o.finalize(state, runmodel.FinalStatusFailed)
		return true
	}

	if err := committer.EnsureBranch(ctx, state.run.Branch); err != nil {
		o.failPipeline(state, "committer", "branch setup failed: "+err.Error())
		return true
	}
	o.publish(state.run.ID, eventbus.EventBranchReady, "committer", "branch ready: "+state.run.Branch, iteration)

	committed, err := committer.Commit(ctx, applied)
	if err != nil {
		o.failPipeline(state, "committer", "commit failed: "+err.Error())
		return true
	}
	if committed {
		state.commitCount++
		o.publish(state.run.ID, eventbus.EventCommitted, "committer", "changes committed", iteration)

		if err := committer.Push(ctx, state.run.Branch); err != nil {
			o.failPipeline(state, "committer", "push failed: "+err.Error())
			return true
		}
		o.publish(state.run.ID, eventbus.EventPushed, "committer", "branch pushed", iteration)
	}

	return false
}

// retest re-runs the test suite after an iteration's commit/push and,
// if tests still fail, consults the Monitor before reporting back to the
// loop (spec.md §4.8 MONITOR(i)).
func (o *Orchestrator) retest(ctx context.Context, state *runState) (analyzer.TestRun, []runmodel.ErrorRecord, error) {
	testRun, err := o.runTests(ctx, state)
	if err != nil {
		return analyzer.TestRun{}, nil, err
	}
	records := classifier.Classify(testRun.RawLog)

	iteration := len(state.timeline)
	if testRun.Passed {
		o.appendIteration(state, iteration, runmodel.IterationPassed)
		o.finalize(state, runmodel.FinalStatusPassed)
		return testRun, records, errStop
	}

	if state.owner != "" && state.repo != "" && o.GitHubToken != "" {
		o.publish(state.run.ID, eventbus.EventCITriggerStart, "monitor", "checking CI", iteration)
		monitor := gitops.NewMonitor(gitops.NewGitHubClient(o.GitHubToken), o.CITimeout, o.Logger)
		o.publish(state.run.ID, eventbus.EventCITriggered, "monitor", "dispatch attempted", iteration)
		o.publish(state.run.ID, eventbus.EventCIPollStart, "monitor", "polling for completion", iteration)
		outcome := monitor.Observe(ctx, state.owner, state.repo, state.run.Branch)
		o.publish(state.run.ID, eventbus.EventCIStatus, "monitor", outcome.Conclusion, iteration)
		if outcome.Passed {
			o.appendIteration(state, iteration, runmodel.IterationCIPassed)
			o.finalize(state, runmodel.FinalStatusPassed)
			return testRun, records, errStop
		}
	}

	o.appendIteration(state, iteration, runmodel.IterationFailed)
	return testRun, records, nil
}

// errStop signals runLoop that retest already reached a terminal state and
// finalized the run; it is never surfaced to a caller outside this package.
var errStop = fmt.Errorf("orchestrator: run already finalized")

func (o *Orchestrator) runTests(ctx context.Context, state *runState) (analyzer.TestRun, error) {
	o.publish(state.run.ID, eventbus.EventTestsStart, "analyzer", "running tests", nil)
	testRun, err := o.Analyzer.RunTests(ctx, state.workingTree, state.run.ID)
	if err != nil {
		return analyzer.TestRun{}, err
	}
	o.publish(state.run.ID, eventbus.EventTestsDiscovered, "analyzer", fmt.Sprintf("%d test file(s)", len(testRun.Files)), nil)
	o.publish(state.run.ID, eventbus.EventTestsDone, "analyzer", fmt.Sprintf("exit code %d", testRun.ExitCode), nil)
	return testRun, nil
}

func (o *Orchestrator) appendIteration(state *runState, iteration int, status runmodel.IterationStatus) {
	state.timeline = append(state.timeline, runmodel.IterationRecord{
		Iteration: iteration,
		Status:    status,
		Timestamp: time.Now(),
	})
}

func (o *Orchestrator) failPipeline(state *runState, agent, message string) {
	o.appendIteration(state, len(state.timeline), runmodel.IterationError)
	o.Logger.Error("orchestrator: run failed", "runId", state.run.ID, "agent", agent, "message", message)
	o.finalize(state, runmodel.FinalStatusFailed)
}

func (o *Orchestrator) publish(runID, event, agent, message string, progress interface{}) {
	var p *int
	if n, ok := progress.(int); ok {
		p = &n
	}
	o.Bus.Publish(eventbus.Event{
		RunID:     runID,
		Timestamp: time.Now(),
		Event:     event,
		Agent:     agent,
		Message:   message,
		Progress:  p,
	})
}

func iterationStatusForTests(passed bool) runmodel.IterationStatus {
	if passed {
		return runmodel.IterationPassed
	}
	return runmodel.IterationFailed
}

func countFixed(fixes []runmodel.AppliedFix) int {
	n := 0
	for _, f := range fixes {
		if f.Status == runmodel.FixStatusFixed {
			n++
		}
	}
	return n
}
