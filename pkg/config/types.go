// Package config loads, merges, and validates the single configuration
// object described in spec.md §6 "Environment": model identifiers, project
// defaults, timing, and the sandbox profile, plus per-project overrides.
// Grounded on the teacher's pkg/config package — the same
// Initialize(ctx, configDir) pipeline shape (load YAML, merge with
// built-in defaults, validate, return a ready-to-use *Config).
package config

import "github.com/dynamous-community/YokeFlow/pkg/models"

// ModelsConfig holds the default model identifiers for each session type
// (spec.md §6: "models: {initializer, coding}").
type ModelsConfig struct {
	Initializer string `yaml:"initializer"`
	Coding       string `yaml:"coding"`
}

// ProjectDefaults holds project-scoped defaults (spec.md §6: "project:
// {default_generations_dir, max_iterations}").
type ProjectDefaults struct {
	DefaultGenerationsDir string `yaml:"default_generations_dir"`

	// MaxIterations is the global default session cap per coding-loop run.
	// 0 means unlimited (pkg/orchestrator.StartCodingSessions applies no cap
	// when handed 0).
	MaxIterations int `yaml:"max_iterations"`
}

// TimingConfig holds delay tuning (spec.md §6: "timing:
// {auto_continue_delay_seconds}").
type TimingConfig struct {
	AutoContinueDelaySeconds int `yaml:"auto_continue_delay_seconds"`
}

// SandboxConfig is the global sandbox profile (spec.md §6: "sandbox: {type,
// image, network, memory_limit, cpu_limit, ports[]}").
type SandboxConfig struct {
	Type        models.SandboxKind `yaml:"type"`
	Image       string             `yaml:"image,omitempty"`
	Network     string             `yaml:"network,omitempty"`
	MemoryLimit string             `yaml:"memory_limit,omitempty"`
	CPULimit    string             `yaml:"cpu_limit,omitempty"`
	Ports       []int              `yaml:"ports,omitempty"`
}

// AnalyzerConfig tunes the Prompt-Improvement Analyzer's eligibility
// screening and LLM-elaboration budget (spec.md §4.7).
type AnalyzerConfig struct {
	MinSessions int `yaml:"min_sessions"`
	WindowDays  int `yaml:"window_days"`
	LLMBudget   int `yaml:"llm_budget"`
}

// StoreConfig holds connection settings for the persistence layer.
type StoreConfig struct {
	DSN         string `yaml:"dsn"`
	MaxConns    int32  `yaml:"max_conns"`
	MigrationsDir string `yaml:"migrations_dir,omitempty"`
}

// ServerConfig holds the HTTP/WebSocket listener settings for pkg/api.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// YAMLConfig is the shape of yokeflow.yaml on disk. Every field is a
// pointer or zero-valued so an absent file (or an absent section) leaves
// every default in place.
type YAMLConfig struct {
	Models   *ModelsConfig    `yaml:"models"`
	Project  *ProjectDefaults `yaml:"project"`
	Timing   *TimingConfig    `yaml:"timing"`
	Sandbox  *SandboxConfig   `yaml:"sandbox"`
	Analyzer *AnalyzerConfig  `yaml:"analyzer"`
	Store    *StoreConfig     `yaml:"store"`
	Server   *ServerConfig    `yaml:"server"`
}
