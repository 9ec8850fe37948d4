package analyzer

import (
	"context"
	"testing"

	"github.com/codeready-toolchain/healer/pkg/sandbox"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	result sandbox.Result
}

func (f *fakeExecutor) Execute(ctx context.Context, req sandbox.Request) (sandbox.Result, error) {
	return f.result, nil
}

func TestRunTestsPassing(t *testing.T) {
	exec := &fakeExecutor{result: sandbox.Result{ExitCode: 0, Stdout: "all tests passed"}}
	a := New(exec, nil, nil)

	run, err := a.RunTests(context.Background(), t.TempDir(), "run-1")
	require.NoError(t, err)
	require.True(t, run.Passed)
	require.Contains(t, run.RawLog, "all tests passed")
}

func TestRunTestsFailing(t *testing.T) {
	exec := &fakeExecutor{result: sandbox.Result{ExitCode: 1, Stderr: "SyntaxError: invalid syntax"}}
	a := New(exec, nil, nil)

	run, err := a.RunTests(context.Background(), t.TempDir(), "run-2")
	require.NoError(t, err)
	require.False(t, run.Passed)
	require.Contains(t, run.RawLog, "SyntaxError")
}
