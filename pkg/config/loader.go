package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads a .env file and an optional runtime.yaml from configDir (either
// may be absent), merges in built-in defaults, applies environment
// overrides, and validates the result. Mirrors the teacher's
// config.Initialize(ctx, configDir) entry point.
func Load(configDir string) (*Config, error) {
	envPath := filepath.Join(configDir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("config: load .env: %w", err)
		}
	}

	yc, err := loadYAML(filepath.Join(configDir, "runtime.yaml"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           envOrDefault("PORT", defaultPort),
		FrontendURL:    os.Getenv("FRONTEND_URL"),
		GitHubToken:    os.Getenv("GITHUB_TOKEN"),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMBaseURL:     yc.LLM.BaseURL,
		LLMModels:      yc.LLM.Models,
		RetryLimit:     envIntOrDefault("RETRY_LIMIT", yc.RetryLimit),
		DockerSocket:   envOrDefault("DOCKER_HOST", ""),
		CITimeout:      parseDurationOrDefault(yc.CITimeout, defaultCITimeout),
		ResultsDir:     envOrDefault("RESULTS_DIR", "results"),
		WorkingDirRoot: envOrDefault("WORKDIR_ROOT", "tmp"),
		LogPath:        envOrDefault("LOG_PATH", "logs/healer.log"),
		Runtimes:       yc.Runtimes,
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, fmt.Errorf("config: merge defaults: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(path string) (yamlConfig, error) {
	var yc yamlConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return yc, nil
		}
		return yc, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := expandEnv(raw)
	if err := yaml.Unmarshal(expanded, &yc); err != nil {
		return yc, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return yc, nil
}

// applyDefaults fills in any zero-valued field left after the YAML/env pass,
// using mergo the way the teacher's loader merges queue config defaults.
func applyDefaults(cfg *Config) error {
	defaults := &Config{
		RetryLimit: defaultRetryLimit,
		LLMModels:  defaultModels(),
		Runtimes:   defaultRuntimes(),
	}
	return mergo.Merge(cfg, defaults)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOrDefault reads key as an integer, falling back to fallback if the
// variable is unset or not a valid integer (spec.md §6 RETRY_LIMIT, default
// 5 via defaultRetryLimit once applyDefaults runs).
func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func parseDurationOrDefault(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
