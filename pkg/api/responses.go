package api

import (
	"time"

	"github.com/codeready-toolchain/healer/pkg/eventbus"
	"github.com/codeready-toolchain/healer/pkg/runmodel"
)

// SubmitRunResponse is returned by POST /api/run-agent (spec.md §6).
type SubmitRunResponse struct {
	Status  string `json:"status"`
	RunID   string `json:"runId"`
	Branch  string `json:"branch"`
	Message string `json:"message"`
}

// ErrorResponse is returned for validation and malformed-request failures.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages,omitempty"`
}

// ProcessingResponse is GET /api/results/{runId}'s shape while a run has not
// yet reached a terminal state (spec.md §6).
type ProcessingResponse struct {
	Status    string           `json:"status"`
	RunID     string           `json:"runId"`
	StartedAt time.Time        `json:"startedAt"`
	Logs      []eventbus.Event `json:"logs"`
}

// TerminalResponse is GET /api/results/{runId}'s shape once a run has
// completed or failed.
type TerminalResponse struct {
	Status      string                `json:"status"`
	RunID       string                `json:"runId"`
	StartedAt   time.Time             `json:"startedAt"`
	CompletedAt *time.Time            `json:"completedAt"`
	Result      *runmodel.FinalReport `json:"result"`
}

// RunSummary is one entry in the GET /api/runs listing.
type RunSummary struct {
	RunID       string     `json:"runId"`
	RepoURL     string     `json:"repoUrl"`
	TeamName    string     `json:"teamName"`
	LeaderName  string     `json:"leaderName"`
	Branch      string     `json:"branch"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// RunsResponse is returned by GET /api/runs.
type RunsResponse struct {
	Runs []RunSummary `json:"runs"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// DockerStatusResponse is returned by GET /api/docker-status.
type DockerStatusResponse struct {
	Available  bool   `json:"available"`
	Version    string `json:"version,omitempty"`
	Containers int    `json:"containers,omitempty"`
	Error      string `json:"error,omitempty"`
}

func toRunSummary(run runmodel.Run) RunSummary {
	return RunSummary{
		RunID:       run.ID,
		RepoURL:     run.RepoURL,
		TeamName:    run.TeamName,
		LeaderName:  run.LeaderName,
		Branch:      run.Branch,
		Status:      string(run.Status),
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	}
}
