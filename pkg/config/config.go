package config

import (
	"time"

	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// Config is the single configuration object described in spec.md §6,
// fully resolved: built-in defaults merged with yokeflow.yaml, ready for
// use by every other package. Initialize is defined in loader.go.
type Config struct {
	configDir string

	Models   ModelsConfig
	Project  ProjectDefaults
	Timing   TimingConfig
	Sandbox  SandboxConfig
	Analyzer AnalyzerConfig
	Store    StoreConfig
	Server   ServerConfig
}

// ConfigDir returns the directory Config was loaded from.
func (c *Config) ConfigDir() string { return c.configDir }

// AutoContinueDelay returns the timing config as a time.Duration, the unit
// pkg/orchestrator.Deps actually wants.
func (c *Config) AutoContinueDelay() time.Duration {
	return time.Duration(c.Timing.AutoContinueDelaySeconds) * time.Second
}

// ResolveSandbox applies a project's sandbox-kind override, if any, on top
// of the global sandbox profile (spec.md §6: "Per-project overrides of
// sandbox.type, models.*, max_iterations").
func (c *Config) ResolveSandbox(override models.SandboxKind) SandboxConfig {
	cfg := c.Sandbox
	if override != "" {
		cfg.Type = override
	}
	return cfg
}

// ResolveModel returns the effective model identifier for a session type,
// given a project-level override that may be empty.
func (c *Config) ResolveModel(sessionType models.SessionType, override string) string {
	if override != "" {
		return override
	}
	if sessionType == models.SessionTypeInitializer {
		return c.Models.Initializer
	}
	return c.Models.Coding
}
