package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

const (
	sandboxMemoryBytes  = 512 * 1024 * 1024
	sandboxSwapBytes    = 1024 * 1024 * 1024
	sandboxNanoCPUs     = 2_000_000_000
	containerWorkingDir = "/workspace"
)

// DockerExecutor runs commands inside short-lived, resource-capped
// containers. Every container is labeled with its owning run and removed on
// every exit path (spec.md §5).
type DockerExecutor struct {
	cli    *client.Client
	Logger *slog.Logger
}

// NewDockerExecutor connects to the daemon named by the DOCKER_HOST
// environment variable (or the platform default) and negotiates the API
// version, mirroring the client construction used by the wider example
// pack's container runners.
func NewDockerExecutor(logger *slog.Logger) (*DockerExecutor, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("sandbox: connect to docker daemon: %w", err)
	}
	return &DockerExecutor{cli: cli, Logger: logger}, nil
}

// Available reports whether the daemon responds to a ping, used to decide
// between the container-backed and native executors at startup.
func (d *DockerExecutor) Available(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := d.cli.Ping(pingCtx)
	return err == nil
}

// Execute creates, runs, streams, and removes one container for req.
func (d *DockerExecutor) Execute(ctx context.Context, req Request) (Result, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if req.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	name := fmt.Sprintf("healer-%s-%d", req.RunLabel, time.Now().UnixNano())
	hostCfg := &container.HostConfig{
		Binds: []string{req.WorkingTreePath + ":" + containerWorkingDir},
		Resources: container.Resources{
			Memory:     sandboxMemoryBytes,
			MemorySwap: sandboxMemoryBytes + sandboxSwapBytes,
			NanoCPUs:   sandboxNanoCPUs,
		},
		AutoRemove: false,
	}
	containerCfg := &container.Config{
		Image:      req.Image,
		Cmd:        []string{"sh", "-c", req.Command},
		WorkingDir: containerWorkingDir,
		Labels: map[string]string{
			"healer.run": req.RunLabel,
		},
	}

	created, err := d.cli.ContainerCreate(runCtx, containerCfg, hostCfg, nil, nil, name)
	if err != nil {
		d.Logger.Error("sandbox container create failed", "runLabel", req.RunLabel, "error", err)
		return Result{ExitCode: 1, Stderr: truncate(err.Error())}, nil
	}
	containerID := created.ID

	defer func() {
		removeCtx, removeCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer removeCancel()
		if rmErr := d.cli.ContainerRemove(removeCtx, containerID, container.RemoveOptions{Force: true}); rmErr != nil {
			d.Logger.Warn("sandbox container cleanup failed", "runLabel", req.RunLabel, "containerId", containerID, "error", rmErr)
		}
	}()

	if err := d.cli.ContainerStart(runCtx, containerID, container.StartOptions{}); err != nil {
		d.Logger.Error("sandbox container start failed", "runLabel", req.RunLabel, "error", err)
		return Result{ExitCode: 1, Stderr: truncate(err.Error())}, nil
	}

	statusCh, errCh := d.cli.ContainerWait(runCtx, containerID, container.WaitConditionNotRunning)
	var exitCode int64
	select {
	case <-runCtx.Done():
		d.Logger.Warn("sandbox container timed out", "runLabel", req.RunLabel, "containerId", containerID)
		stdout, _ := d.collectLogs(context.Background(), containerID)
		return Result{ExitCode: timeoutExitCode, Stdout: stdout, Stderr: timeoutMarker}, nil
	case waitErr := <-errCh:
		if waitErr != nil {
			d.Logger.Error("sandbox container wait failed", "runLabel", req.RunLabel, "error", waitErr)
			return Result{ExitCode: 1, Stderr: truncate(waitErr.Error())}, nil
		}
	case status := <-statusCh:
		exitCode = status.StatusCode
	}

	stdout, stderr := d.collectLogs(context.Background(), containerID)
	return Result{ExitCode: int(exitCode), Stdout: stdout, Stderr: stderr}, nil
}

func (d *DockerExecutor) collectLogs(ctx context.Context, containerID string) (stdout, stderr string) {
	logs, err := d.cli.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", truncate(err.Error())
	}
	defer logs.Close()

	var outBuf, errBuf bytes.Buffer
	if _, err := stdcopy.StdCopy(&outBuf, &errBuf, logs); err != nil && err != io.EOF {
		d.Logger.Warn("sandbox log demux incomplete", "error", err)
	}
	return truncate(outBuf.String()), truncate(errBuf.String())
}
