package config

import "fmt"

// Validate checks cfg for the settings the Orchestrator and its agents
// cannot run without, collecting every violation rather than stopping at
// the first (mirrors the teacher's validator.go collect-all-errors style).
func Validate(cfg *Config) error {
	var messages []string

	if cfg.Port == "" {
		messages = append(messages, "PORT must not be empty")
	}
	if cfg.GitHubToken == "" {
		messages = append(messages, "GITHUB_TOKEN is required to clone, push, and poll CI")
	}
	if cfg.LLMAPIKey == "" {
		messages = append(messages, "LLM_API_KEY is required for fix generation")
	}
	if cfg.LLMBaseURL == "" {
		messages = append(messages, "llm.baseUrl must be set in runtime.yaml")
	}
	if len(cfg.LLMModels) == 0 {
		messages = append(messages, "llm.models must list at least one model")
	}
	if cfg.RetryLimit <= 0 {
		messages = append(messages, "retryLimit must be positive")
	}
	if cfg.CITimeout <= 0 {
		messages = append(messages, "ciTimeout must be positive")
	}
	if len(cfg.Runtimes) == 0 {
		messages = append(messages, "runtimes table must not be empty")
	}
	for lang, rt := range cfg.Runtimes {
		if rt.Image == "" {
			messages = append(messages, fmt.Sprintf("runtimes.%s.image must not be empty", lang))
		}
		if rt.TestCmd == "" {
			messages = append(messages, fmt.Sprintf("runtimes.%s.testCmd must not be empty", lang))
		}
	}

	if len(messages) > 0 {
		return &ValidationError{Messages: messages}
	}
	return nil
}
