package api

import (
	"context"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
)

// healthHandler handles GET /api/health (spec.md §6).
func (s *Server) healthHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// dockerStatusHandler handles GET /api/docker-status (spec.md §6).
func (s *Server) dockerStatusHandler(c *echo.Context) error {
	if s.docker == nil {
		return c.JSON(http.StatusOK, DockerStatusResponse{Available: false, Error: "no container backend configured"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if !s.docker.Available(ctx) {
		return c.JSON(http.StatusOK, DockerStatusResponse{Available: false, Error: "docker daemon not reachable"})
	}
	return c.JSON(http.StatusOK, DockerStatusResponse{Available: true})
}
