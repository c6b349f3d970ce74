package config

import (
	"fmt"

	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// Validator validates a fully-merged Config with clear, section-scoped
// error messages, mirroring the teacher's pkg/config.Validator.
type Validator struct {
	cfg *Config
}

// NewValidator builds a Validator for cfg.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll runs every section's validation, fail-fast at the first
// error the way the teacher's ValidateAll does.
func (v *Validator) ValidateAll() error {
	if err := v.validateModels(); err != nil {
		return fmt.Errorf("models validation failed: %w", err)
	}
	if err := v.validateProject(); err != nil {
		return fmt.Errorf("project validation failed: %w", err)
	}
	if err := v.validateTiming(); err != nil {
		return fmt.Errorf("timing validation failed: %w", err)
	}
	if err := v.validateSandbox(); err != nil {
		return fmt.Errorf("sandbox validation failed: %w", err)
	}
	if err := v.validateAnalyzer(); err != nil {
		return fmt.Errorf("analyzer validation failed: %w", err)
	}
	if err := v.validateStore(); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validateModels() error {
	if v.cfg.Models.Initializer == "" {
		return NewValidationError("models", "initializer", ErrValidationFailed)
	}
	if v.cfg.Models.Coding == "" {
		return NewValidationError("models", "coding", ErrValidationFailed)
	}
	return nil
}

func (v *Validator) validateProject() error {
	if v.cfg.Project.MaxIterations < 0 {
		return NewValidationError("project", "max_iterations", fmt.Errorf("must be >= 0 (0 means unlimited)"))
	}
	if v.cfg.Project.DefaultGenerationsDir == "" {
		return NewValidationError("project", "default_generations_dir", ErrValidationFailed)
	}
	return nil
}

func (v *Validator) validateTiming() error {
	if v.cfg.Timing.AutoContinueDelaySeconds < 0 {
		return NewValidationError("timing", "auto_continue_delay_seconds", fmt.Errorf("must be >= 0"))
	}
	return nil
}

func (v *Validator) validateSandbox() error {
	switch v.cfg.Sandbox.Type {
	case models.SandboxKindContainer, models.SandboxKindLocal:
	default:
		return NewValidationError("sandbox", "type", fmt.Errorf("must be %q or %q, got %q",
			models.SandboxKindContainer, models.SandboxKindLocal, v.cfg.Sandbox.Type))
	}
	if v.cfg.Sandbox.Type == models.SandboxKindContainer && v.cfg.Sandbox.Image == "" {
		return NewValidationError("sandbox", "image", fmt.Errorf("required when type is %q", models.SandboxKindContainer))
	}
	for _, port := range v.cfg.Sandbox.Ports {
		if port <= 0 || port > 65535 {
			return NewValidationError("sandbox", "ports", fmt.Errorf("invalid port %d", port))
		}
	}
	return nil
}

func (v *Validator) validateAnalyzer() error {
	if v.cfg.Analyzer.MinSessions <= 0 {
		return NewValidationError("analyzer", "min_sessions", fmt.Errorf("must be > 0"))
	}
	if v.cfg.Analyzer.WindowDays <= 0 {
		return NewValidationError("analyzer", "window_days", fmt.Errorf("must be > 0"))
	}
	if v.cfg.Analyzer.LLMBudget < 0 {
		return NewValidationError("analyzer", "llm_budget", fmt.Errorf("must be >= 0"))
	}
	return nil
}

func (v *Validator) validateStore() error {
	if v.cfg.Store.DSN == "" {
		return NewValidationError("store", "dsn", ErrValidationFailed)
	}
	if v.cfg.Store.MaxConns <= 0 {
		return NewValidationError("store", "max_conns", fmt.Errorf("must be > 0"))
	}
	return nil
}
