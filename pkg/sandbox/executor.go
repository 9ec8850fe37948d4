// Package sandbox runs an arbitrary shell command against a mounted working
// tree in an isolated, resource-capped environment, falling back to direct
// process execution when no container daemon is reachable (spec.md §4.1).
package sandbox

import (
	"context"
	"time"
)

// maxStreamBytes bounds how much of stdout/stderr is kept; each stream is
// truncated to its last maxStreamBytes bytes.
const maxStreamBytes = 50_000

// timeoutMarker is written to stderr when a command is killed for running
// past its deadline.
const timeoutMarker = "TIMEOUT"

// timeoutExitCode is returned when a command is killed for running past its
// deadline.
const timeoutExitCode = 124

// Result is the outcome of one sandboxed command.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// TimedOut reports whether the command was killed for exceeding its deadline.
func (r Result) TimedOut() bool {
	return r.ExitCode == timeoutExitCode && r.Stderr == timeoutMarker
}

// Executor runs a shell command against a working tree. Both the
// container-backed and native implementations satisfy this contract;
// infrastructure failures (image pull, container creation) are reported as
// a non-zero exit code with the failure text in Stderr, never as an error —
// Execute only returns an error when the caller's own arguments are invalid.
type Executor interface {
	Execute(ctx context.Context, req Request) (Result, error)
}

// Request describes one sandboxed invocation.
type Request struct {
	// Image is the container image to run the command in. Ignored by the
	// native executor.
	Image string
	// WorkingTreePath is the host directory mounted read-write into the
	// sandbox (or used directly, for the native executor).
	WorkingTreePath string
	// Command is executed through a shell ("sh -c command").
	Command string
	// Timeout bounds the command's wall-clock execution. Zero means no
	// timeout is applied beyond the context's own deadline.
	Timeout time.Duration
	// RunLabel scopes container names/labels to the owning run, so cleanup
	// never touches another run's containers.
	RunLabel string
}

func truncate(s string) string {
	if len(s) <= maxStreamBytes {
		return s
	}
	return s[len(s)-maxStreamBytes:]
}
