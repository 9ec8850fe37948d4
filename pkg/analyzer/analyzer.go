package analyzer

import (
	"context"
	"log/slog"
	"time"

	"github.com/codeready-toolchain/healer/pkg/sandbox"
)

// containerTimeout is the default per-command budget for the Sandbox
// Executor (spec.md §5).
const containerTimeout = 120 * time.Second

// TestRun is the outcome of discovering and executing a repository's test
// suite.
type TestRun struct {
	Language Language
	Files    []string
	RawLog   string
	Passed   bool
	ExitCode int
}

// Analyzer clones, detects, discovers, and executes tests for one run's
// working tree.
type Analyzer struct {
	Executor sandbox.Executor
	Runtimes RuntimeTable
	Logger   *slog.Logger
}

// New constructs an Analyzer.
func New(executor sandbox.Executor, runtimes RuntimeTable, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if runtimes == nil {
		runtimes = DefaultRuntimeTable()
	}
	return &Analyzer{Executor: executor, Runtimes: runtimes, Logger: logger}
}

// RunTests detects the language in workingTreePath, discovers test files,
// and executes installCmd && testCmd through the Sandbox Executor.
func (a *Analyzer) RunTests(ctx context.Context, workingTreePath, runLabel string) (TestRun, error) {
	lang := DetectLanguage(workingTreePath)
	descriptor := a.Runtimes[lang]

	files, err := DiscoverTestFiles(workingTreePath, lang)
	if err != nil {
		a.Logger.Warn("test discovery failed", "error", err)
	}

	command := descriptor.TestCmd
	if descriptor.InstallCmd != "" {
		command = descriptor.InstallCmd + " && " + descriptor.TestCmd
	}

	result, err := a.Executor.Execute(ctx, sandbox.Request{
		Image:           descriptor.Image,
		WorkingTreePath: workingTreePath,
		Command:         command,
		Timeout:         containerTimeout,
		RunLabel:        runLabel,
	})
	if err != nil {
		return TestRun{}, err
	}

	return TestRun{
		Language: lang,
		Files:    files,
		RawLog:   result.Stdout + "\n" + result.Stderr,
		Passed:   result.ExitCode == 0,
		ExitCode: result.ExitCode,
	}, nil
}
