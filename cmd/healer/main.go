// Command healer runs the autonomous heal loop server: it accepts run
// submissions over HTTP, reproduces failing tests in a sandbox, generates
// and applies LLM-based fixes, commits and pushes them, and watches CI
// until the branch goes green or the retry budget is exhausted.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/codeready-toolchain/healer/pkg/analyzer"
	"github.com/codeready-toolchain/healer/pkg/api"
	"github.com/codeready-toolchain/healer/pkg/config"
	"github.com/codeready-toolchain/healer/pkg/eventbus"
	"github.com/codeready-toolchain/healer/pkg/fixgen"
	"github.com/codeready-toolchain/healer/pkg/orchestrator"
	"github.com/codeready-toolchain/healer/pkg/registry"
	"github.com/codeready-toolchain/healer/pkg/sandbox"
	"github.com/codeready-toolchain/healer/pkg/version"
)

// logMaxSizeMB and logMaxBackups bound the log file to three rolling 5 MB
// segments (spec.md §6 Persisted state).
const (
	logMaxSizeMB  = 5
	logMaxBackups = 2
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := newLogger(cfg.LogPath)
	logger.Info("starting healer", "version", version.Full(), "configDir", *configDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	executor := sandbox.NewExecutor(ctx, logger)
	runtimes := analyzer.RuntimeTableFromConfig(cfg.Runtimes)
	an := analyzer.New(executor, runtimes, logger)

	model := fixgen.NewHTTPLanguageModel(cfg.LLMBaseURL, cfg.LLMAPIKey)
	fg := fixgen.NewGenerator(model, cfg.LLMModels, logger)

	reg := registry.New()
	bus := eventbus.New(logger)

	orch := orchestrator.New(reg, bus, an, fg, cfg.GitHubToken, cfg.RetryLimit, cfg.CITimeout, cfg.ResultsDir, cfg.WorkingDirRoot, logger)

	server := api.NewServer(orch, reg, bus, dockerCheckerFor(executor), cfg.FrontendURL)

	addr := ":" + cfg.Port
	logger.Info("http server listening", "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during graceful shutdown", "error", err)
	}
}

// dockerCheckerFor narrows executor to the Available(ctx) bool capability
// the docker-status endpoint needs; native executors report unavailable.
func dockerCheckerFor(executor sandbox.Executor) interface {
	Available(ctx context.Context) bool
} {
	if d, ok := executor.(*sandbox.DockerExecutor); ok {
		return d
	}
	return unavailableChecker{}
}

type unavailableChecker struct{}

func (unavailableChecker) Available(context.Context) bool { return false }

// newLogger builds the process-wide structured logger, writing JSON both to
// stdout and to a rotating logPath bounded to three 5 MB segments (the
// active file plus logMaxBackups rotated ones) via lumberjack, so the log
// never grows unbounded (spec.md §6 Persisted state).
func newLogger(logPath string) *slog.Logger {
	writer := io.Writer(os.Stdout)
	if logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err == nil {
			writer = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   logPath,
				MaxSize:    logMaxSizeMB,
				MaxBackups: logMaxBackups,
			})
		}
	}
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
