// Package config loads the process configuration: environment-driven
// settings plus the YAML-defined runtime descriptor table and LLM model
// list, following the teacher's configLoader pattern (expand env vars,
// unmarshal YAML, merge defaults, validate).
package config

import (
	"time"

	"github.com/codeready-toolchain/healer/pkg/runmodel"
)

// Config is the fully resolved process configuration.
type Config struct {
	Port           string
	FrontendURL    string
	GitHubToken    string
	LLMAPIKey      string
	LLMBaseURL     string
	LLMModels      []string
	RetryLimit     int
	DockerSocket   string
	CITimeout      time.Duration
	ResultsDir     string
	WorkingDirRoot string
	LogPath        string
	Runtimes       map[string]runmodel.RuntimeDescriptor
}

// yamlConfig is the on-disk shape read from the config file, before
// defaults are merged in and environment overrides are applied.
type yamlConfig struct {
	LLM struct {
		BaseURL string   `yaml:"baseUrl"`
		Models  []string `yaml:"models"`
	} `yaml:"llm"`
	RetryLimit int                                 `yaml:"retryLimit"`
	CITimeout  string                              `yaml:"ciTimeout"`
	Runtimes   map[string]runmodel.RuntimeDescriptor `yaml:"runtimes"`
}
