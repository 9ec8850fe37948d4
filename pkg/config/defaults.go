package config

import (
	"time"

	"github.com/codeready-toolchain/healer/pkg/runmodel"
)

// defaultRetryLimit is the Orchestrator's retry budget when unset
// (spec.md §4.8, §6: RETRY_LIMIT default 5).
const defaultRetryLimit = 5

// defaultCITimeout is the Monitor's polling budget when unset (spec.md
// §4.7: default 5 min).
const defaultCITimeout = 5 * time.Minute

const defaultPort = "8080"

// defaultRuntimes is the built-in per-language sandbox image and command
// table merged into Config.Runtimes. pkg/analyzer keeps a copy with the same
// values (analyzer.DefaultRuntimeTable), which RuntimeTableFromConfig uses
// as the base that the configured entries override.
func defaultRuntimes() map[string]runmodel.RuntimeDescriptor {
	return map[string]runmodel.RuntimeDescriptor{
		"node":   {Image: "node:20-alpine", InstallCmd: "npm install", TestCmd: "npm test"},
		"python": {Image: "python:3.12-slim", InstallCmd: "pip install -r requirements.txt", TestCmd: "pytest"},
		"go":     {Image: "golang:1.22-alpine", InstallCmd: "", TestCmd: "go test ./..."},
		"rust":   {Image: "rust:1.78-slim", InstallCmd: "", TestCmd: "cargo test"},
		"java":   {Image: "maven:3.9-eclipse-temurin-21", InstallCmd: "", TestCmd: "mvn test"},
	}
}

func defaultModels() []string {
	return []string{"gpt-4o-mini", "gemini-1.5-flash"}
}
