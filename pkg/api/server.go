// Package api provides the HTTP API handlers for the heal loop: submitting
// runs, polling or streaming their progress, and listing the registry.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/codeready-toolchain/healer/pkg/eventbus"
	"github.com/codeready-toolchain/healer/pkg/orchestrator"
	"github.com/codeready-toolchain/healer/pkg/registry"
)

// dockerChecker reports whether the sandbox's container backend is
// reachable; satisfied by sandbox.DockerExecutor.
type dockerChecker interface {
	Available(ctx context.Context) bool
}

// Server is the HTTP API server fronting one Orchestrator.
type Server struct {
	echo         *echo.Echo
	httpServer   *http.Server
	orchestrator *orchestrator.Orchestrator
	registry     *registry.Registry
	bus          *eventbus.Bus
	docker       dockerChecker // nil if no container backend is wired
	frontendURL  string
	startedAt    time.Time
}

// NewServer creates a new API server with Echo v5, wired to the given
// Orchestrator, registry, and event bus.
func NewServer(orch *orchestrator.Orchestrator, reg *registry.Registry, bus *eventbus.Bus, docker dockerChecker, frontendURL string) *Server {
	e := echo.New()

	s := &Server{
		echo:         e,
		orchestrator: orch,
		registry:     reg,
		bus:          bus,
		docker:       docker,
		frontendURL:  frontendURL,
		startedAt:    time.Now(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes registers all API routes.
func (s *Server) setupRoutes() {
	s.echo.Use(middleware.BodyLimit(2 * 1024 * 1024))
	s.echo.Use(securityHeaders())
	s.echo.Use(corsForFrontend(s.frontendURL))

	s.echo.GET("/api/health", s.healthHandler)
	s.echo.GET("/api/docker-status", s.dockerStatusHandler)

	s.echo.POST("/api/run-agent", s.submitRunHandler)
	s.echo.GET("/api/results/:runId", s.resultsHandler)
	s.echo.GET("/api/runs", s.runsHandler)

	s.echo.GET("/api/stream", s.wsHandler)
}

// Start starts the HTTP server on the given address (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener.
// Used by test infrastructure to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
