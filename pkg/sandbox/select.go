package sandbox

import (
	"context"
	"log/slog"
)

// NewExecutor probes for a reachable container daemon and returns the
// docker-backed executor if one answers, otherwise the native fallback
// (spec.md §4.1).
func NewExecutor(ctx context.Context, logger *slog.Logger) Executor {
	if logger == nil {
		logger = slog.Default()
	}
	docker, err := NewDockerExecutor(logger)
	if err == nil && docker.Available(ctx) {
		logger.Info("sandbox executor selected", "mode", "docker")
		return docker
	}
	if err != nil {
		logger.Warn("docker client unavailable, falling back to native sandbox", "error", err)
	} else {
		logger.Warn("docker daemon unreachable, falling back to native sandbox")
	}
	return NewNativeExecutor(logger)
}
