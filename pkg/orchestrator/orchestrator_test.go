package orchestrator

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeready-toolchain/healer/pkg/analyzer"
	"github.com/codeready-toolchain/healer/pkg/eventbus"
	"github.com/codeready-toolchain/healer/pkg/fixgen"
	"github.com/codeready-toolchain/healer/pkg/registry"
	"github.com/codeready-toolchain/healer/pkg/runmodel"
	"github.com/codeready-toolchain/healer/pkg/sandbox"
)

// initSourceRepo creates a local bare-enough git repository analyzer.Clone
// can check out, seeded with one syntax error in src/a.py.
func initSourceRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoErrorf(t, err, "git %v: %s", args, out)
	}
	run("init", "-b", "main")
	run("config", "user.name", "tester")
	run("config", "user.email", "tester@example.com")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte(""), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.py"), []byte("def f()\n    return 1\n"), 0o644))

	run("add", ".")
	run("commit", "-m", "initial")
	return dir
}

// countingExecutor fails the first Execute call and passes every call after,
// simulating a repo whose tests fail until the fix lands.
type countingExecutor struct {
	calls int
}

func (c *countingExecutor) Execute(ctx context.Context, req sandbox.Request) (sandbox.Result, error) {
	c.calls++
	if c.calls == 1 {
		return sandbox.Result{ExitCode: 1, Stdout: "", Stderr: "File \"src/a.py\", line 1: SyntaxError: invalid syntax"}, nil
	}
	return sandbox.Result{ExitCode: 0, Stdout: "1 passed"}, nil
}

type fixModel struct{}

func (fixModel) Complete(ctx context.Context, model string, messages []fixgen.Message) (string, error) {
	proposals := []map[string]any{{
		"file":          "src/a.py",
		"line":          1,
		"kind":          "SYNTAX",
		"description":   "missing colon",
		"originalCode":  "def f()",
		"fixedCode":     "def f():",
		"commitMessage": "fix missing colon",
	}}
	data, _ := json.Marshal(proposals)
	return string(data), nil
}

func newTestOrchestrator(t *testing.T, exec *countingExecutor) (*Orchestrator, *registry.Registry) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	reg := registry.New()
	bus := eventbus.New(logger)
	an := analyzer.New(exec, analyzer.DefaultRuntimeTable(), logger)
	fg := fixgen.NewGenerator(fixModel{}, []string{"test-model"}, logger)

	resultsDir := t.TempDir()
	workRoot := t.TempDir()

	o := New(reg, bus, an, fg, "", 5, 2*time.Second, resultsDir, workRoot, logger)
	return o, reg
}

// terminalRun fetches runID, which must already be terminal: execute runs
// the pipeline synchronously on the calling goroutine in these tests.
func terminalRun(t *testing.T, reg *registry.Registry, runID string) runmodel.Run {
	t.Helper()
	run, err := reg.Get(runID)
	require.NoError(t, err)
	require.NotEqual(t, runmodel.RunStatusRunning, run.Status)
	return run
}

func TestOrchestratorGreenOnFirstRun(t *testing.T) {
	repo := initSourceRepo(t)
	o, reg := newTestOrchestrator(t, &countingExecutor{})
	o.Analyzer = analyzer.New(&alwaysPassExecutor{}, analyzer.DefaultRuntimeTable(), o.Logger)

	run := &runmodel.Run{
		ID:        "green-run",
		RepoURL:   repo,
		Branch:    "TEAM_LEADER_AI_FIX",
		StartedAt: time.Now(),
		Status:    runmodel.RunStatusRunning,
	}
	require.NoError(t, reg.Create(run))

	o.execute(*run, "", "")

	final := terminalRun(t, reg, "green-run")
	require.NotNil(t, final.Report)
	assert.Equal(t, runmodel.FinalStatusPassed, final.Report.FinalStatus)
	assert.Equal(t, 0, final.Report.TotalFailures)
	assert.Equal(t, 0, final.Report.TotalFixes)
	require.Len(t, final.Report.Timeline, 1)
	assert.Equal(t, runmodel.IterationPassed, final.Report.Timeline[0].Status)

	_, err := os.Stat(filepath.Join(o.WorkingDirRoot, "green-run"))
	assert.True(t, os.IsNotExist(err), "working tree must be cleaned up")
}

type alwaysPassExecutor struct{}

func (alwaysPassExecutor) Execute(ctx context.Context, req sandbox.Request) (sandbox.Result, error) {
	return sandbox.Result{ExitCode: 0, Stdout: "ok"}, nil
}

func TestOrchestratorOneShotFix(t *testing.T) {
	repo := initSourceRepo(t)
	exec := &countingExecutor{}
	o, reg := newTestOrchestrator(t, exec)

	run := &runmodel.Run{
		ID:        "one-shot-run",
		RepoURL:   repo,
		Branch:    "TEAM_LEADER_AI_FIX",
		StartedAt: time.Now(),
		Status:    runmodel.RunStatusRunning,
	}
	require.NoError(t, reg.Create(run))

	o.execute(*run, "", "")

	final := terminalRun(t, reg, "one-shot-run")
	require.NotNil(t, final.Report)
	assert.Equal(t, runmodel.FinalStatusPassed, final.Report.FinalStatus)
	assert.Equal(t, 1, final.Report.TotalFixes)
	require.Len(t, final.Report.Timeline, 2)
	assert.Equal(t, runmodel.IterationFailed, final.Report.Timeline[0].Status)
	assert.Equal(t, runmodel.IterationPassed, final.Report.Timeline[1].Status)

	reportPath := filepath.Join(o.ResultsDir, "one-shot-run.json")
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var onDisk runmodel.FinalReport
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, final.Report.FinalStatus, onDisk.FinalStatus)
}

func TestOrchestratorNoFixesWhenModelDegrades(t *testing.T) {
	repo := initSourceRepo(t)
	exec := &countingExecutor{}
	o, reg := newTestOrchestrator(t, exec)
	o.FixGenerator = fixgen.NewGenerator(nonsenseModel{}, []string{"test-model"}, o.Logger)

	run := &runmodel.Run{
		ID:        "degraded-run",
		RepoURL:   repo,
		Branch:    "TEAM_LEADER_AI_FIX",
		StartedAt: time.Now(),
		Status:    runmodel.RunStatusRunning,
	}
	require.NoError(t, reg.Create(run))

	o.execute(*run, "", "")

	final := terminalRun(t, reg, "degraded-run")
	require.NotNil(t, final.Report)
	assert.Equal(t, runmodel.FinalStatusFailed, final.Report.FinalStatus)
	for _, f := range final.Report.Fixes {
		assert.Equal(t, runmodel.FixStatusSkipped, f.Status)
	}
	assert.Equal(t, runmodel.IterationApplyFailed, final.Report.Timeline[len(final.Report.Timeline)-1].Status)
}

type nonsenseModel struct{}

func (nonsenseModel) Complete(ctx context.Context, model string, messages []fixgen.Message) (string, error) {
	return "the model rambles without emitting any JSON array", nil
}
