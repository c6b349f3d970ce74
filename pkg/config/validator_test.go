package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dynamous-community/YokeFlow/pkg/models"
)

func baseValidConfig() *Config {
	return &Config{
		Models:   defaultModels(),
		Project:  defaultProject(),
		Timing:   defaultTiming(),
		Sandbox:  defaultSandbox(),
		Analyzer: defaultAnalyzer(),
		Store:    defaultStore(),
		Server:   defaultServer(),
	}
}

func TestValidateAll_DefaultsAreValid(t *testing.T) {
	assert.NoError(t, NewValidator(baseValidConfig()).ValidateAll())
}

func TestValidateAll_RejectsEmptyCodingModel(t *testing.T) {
	cfg := baseValidConfig()
	cfg.Models.Coding = ""
	assert.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateAll_RejectsNegativeMaxIterations(t *testing.T) {
	cfg := baseValidConfig()
	cfg.Project.MaxIterations = -1
	assert.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateAll_RejectsUnknownSandboxType(t *testing.T) {
	cfg := baseValidConfig()
	cfg.Sandbox.Type = "vm"
	assert.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateAll_RejectsContainerSandboxWithoutImage(t *testing.T) {
	cfg := baseValidConfig()
	cfg.Sandbox.Type = models.SandboxKindContainer
	cfg.Sandbox.Image = ""
	assert.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateAll_LocalSandboxDoesNotRequireImage(t *testing.T) {
	cfg := baseValidConfig()
	cfg.Sandbox.Type = models.SandboxKindLocal
	cfg.Sandbox.Image = ""
	assert.NoError(t, NewValidator(cfg).ValidateAll())
}

func TestValidateAll_RejectsInvalidPort(t *testing.T) {
	cfg := baseValidConfig()
	cfg.Sandbox.Ports = []int{70000}
	assert.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateAll_RejectsZeroMinSessions(t *testing.T) {
	cfg := baseValidConfig()
	cfg.Analyzer.MinSessions = 0
	assert.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidateAll_RejectsEmptyDSN(t *testing.T) {
	cfg := baseValidConfig()
	cfg.Store.DSN = ""
	assert.Error(t, NewValidator(cfg).ValidateAll())
}
