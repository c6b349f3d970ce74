package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_MissingFileUsesBuiltinDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, defaultModels(), cfg.Models)
	assert.Equal(t, defaultSandbox(), cfg.Sandbox)
}

func TestInitialize_YAMLOverridesMergeOnTopOfDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
models:
  coding: custom-coding-model
sandbox:
  type: local
project:
  max_iterations: 20
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "yokeflow.yaml"), []byte(yamlContent), 0o644))

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "custom-coding-model", cfg.Models.Coding)
	assert.Equal(t, defaultModels().Initializer, cfg.Models.Initializer)
	assert.Equal(t, "local", string(cfg.Sandbox.Type))
	assert.Equal(t, 20, cfg.Project.MaxIterations)
}

func TestInitialize_InvalidYAMLErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "yokeflow.yaml"), []byte("models: [this is not a map"), 0o644))

	_, err := Initialize(context.Background(), dir)
	assert.Error(t, err)
}

func TestInitialize_InvalidMergedConfigFailsValidation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "yokeflow.yaml"), []byte("sandbox:\n  type: vm\n"), 0o644))

	_, err := Initialize(context.Background(), dir)
	assert.Error(t, err)
}

func TestInitialize_ExpandsEnvVarsBeforeParsing(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("YOKEFLOW_TEST_DSN", "postgres://test/db")
	defer os.Unsetenv("YOKEFLOW_TEST_DSN")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "yokeflow.yaml"), []byte("store:\n  dsn: ${YOKEFLOW_TEST_DSN}\n"), 0o644))

	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres://test/db", cfg.Store.DSN)
}

func TestConfigDir_ReturnsLoadPath(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Initialize(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ConfigDir())
}
