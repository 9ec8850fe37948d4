package api

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/healer/pkg/runmodel"
)

// submitRunHandler handles POST /api/run-agent (spec.md §6).
func (s *Server) submitRunHandler(c *echo.Context) error {
	var req SubmitRunRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "malformed request body"})
	}

	var messages []string
	if strings.TrimSpace(req.RepoURL) == "" {
		messages = append(messages, "repoUrl is required")
	}
	if strings.TrimSpace(req.TeamName) == "" {
		messages = append(messages, "teamName is required")
	}
	if strings.TrimSpace(req.LeaderName) == "" {
		messages = append(messages, "leaderName is required")
	}
	if len(messages) > 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Messages: messages})
	}

	run, err := s.orchestrator.Submit(c.Request().Context(), req.RepoURL, req.TeamName, req.LeaderName)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid repository URL", Messages: []string{err.Error()}})
	}

	return c.JSON(http.StatusAccepted, SubmitRunResponse{
		Status:  "running",
		RunID:   run.ID,
		Branch:  run.Branch,
		Message: "heal loop started",
	})
}

// resultsHandler handles GET /api/results/{runId} (spec.md §6).
func (s *Server) resultsHandler(c *echo.Context) error {
	runID := c.Param("runId")
	run, err := s.registry.Get(runID)
	if err != nil {
		return mapRegistryError(err)
	}

	if run.Status == runmodel.RunStatusRunning {
		return c.JSON(http.StatusOK, ProcessingResponse{
			Status:    "processing",
			RunID:     run.ID,
			StartedAt: run.StartedAt,
			Logs:      s.bus.Catchup(runID),
		})
	}

	return c.JSON(http.StatusOK, TerminalResponse{
		Status:      string(run.Status),
		RunID:       run.ID,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
		Result:      run.Report,
	})
}

// runsHandler handles GET /api/runs (spec.md §6).
func (s *Server) runsHandler(c *echo.Context) error {
	runs := s.registry.List()
	summaries := make([]RunSummary, 0, len(runs))
	for _, r := range runs {
		summaries = append(summaries, toRunSummary(r))
	}
	return c.JSON(http.StatusOK, RunsResponse{Runs: summaries})
}
