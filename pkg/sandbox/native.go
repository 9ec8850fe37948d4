package sandbox

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
)

// NativeExecutor runs commands directly on the host via os/exec, used when
// no container daemon is reachable.
type NativeExecutor struct {
	Logger *slog.Logger
}

// NewNativeExecutor returns a NativeExecutor logging through logger (or
// slog.Default() if nil).
func NewNativeExecutor(logger *slog.Logger) *NativeExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &NativeExecutor{Logger: logger}
}

// Execute runs req.Command through "sh -c" in req.WorkingTreePath.
func (n *NativeExecutor) Execute(ctx context.Context, req Request) (Result, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if req.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, "sh", "-c", req.Command)
	cmd.Dir = req.WorkingTreePath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		n.Logger.Warn("native sandbox command timed out", "runLabel", req.RunLabel, "timeout", req.Timeout)
		return Result{ExitCode: timeoutExitCode, Stdout: truncate(stdout.String()), Stderr: timeoutMarker}, nil
	}

	if err == nil {
		return Result{ExitCode: 0, Stdout: truncate(stdout.String()), Stderr: truncate(stderr.String())}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{ExitCode: exitErr.ExitCode(), Stdout: truncate(stdout.String()), Stderr: truncate(stderr.String())}, nil
	}

	// Infrastructure failure (e.g. shell not found): surface as a failing
	// exit code with the failure text in stderr, per spec.md §4.1.
	n.Logger.Error("native sandbox command failed to start", "runLabel", req.RunLabel, "error", err)
	return Result{ExitCode: 1, Stdout: truncate(stdout.String()), Stderr: truncate(err.Error())}, nil
}

