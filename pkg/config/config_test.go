package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dynamous-community/YokeFlow/pkg/models"
)

func TestResolveSandbox_OverrideAppliesOnlyType(t *testing.T) {
	cfg := &Config{Sandbox: defaultSandbox()}
	resolved := cfg.ResolveSandbox(models.SandboxKindLocal)
	assert.Equal(t, models.SandboxKindLocal, resolved.Type)
	assert.Equal(t, cfg.Sandbox.Image, resolved.Image)
}

func TestResolveSandbox_EmptyOverrideKeepsGlobal(t *testing.T) {
	cfg := &Config{Sandbox: defaultSandbox()}
	resolved := cfg.ResolveSandbox("")
	assert.Equal(t, cfg.Sandbox.Type, resolved.Type)
}

func TestResolveModel_OverridePreferred(t *testing.T) {
	cfg := &Config{Models: defaultModels()}
	assert.Equal(t, "custom-model", cfg.ResolveModel(models.SessionTypeCoding, "custom-model"))
}

func TestResolveModel_FallsBackByType(t *testing.T) {
	cfg := &Config{Models: defaultModels()}
	assert.Equal(t, cfg.Models.Initializer, cfg.ResolveModel(models.SessionTypeInitializer, ""))
	assert.Equal(t, cfg.Models.Coding, cfg.ResolveModel(models.SessionTypeCoding, ""))
}

func TestAutoContinueDelay_ConvertsSecondsToDuration(t *testing.T) {
	cfg := &Config{Timing: TimingConfig{AutoContinueDelaySeconds: 7}}
	assert.Equal(t, 7e9, float64(cfg.AutoContinueDelay()))
}
