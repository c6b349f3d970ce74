package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Initialize loads, merges, and validates yokeflow.yaml from configDir and
// returns a ready-to-use *Config. Mirrors the teacher's
// config.Initialize(ctx, configDir) pipeline: load, merge onto built-in
// defaults, validate.
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("configuration initialized",
		"coding_model", cfg.Models.Coding,
		"sandbox_type", cfg.Sandbox.Type,
		"server_addr", cfg.Server.Addr)
	return cfg, nil
}

func load(configDir string) (*Config, error) {
	yamlCfg, err := loadYokeflowYAML(configDir)
	if err != nil {
		return nil, NewLoadError("yokeflow.yaml", err)
	}

	models := defaultModels()
	if yamlCfg.Models != nil {
		if err := mergo.Merge(&models, yamlCfg.Models, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging models config: %w", err)
		}
	}

	project := defaultProject()
	if yamlCfg.Project != nil {
		if err := mergo.Merge(&project, yamlCfg.Project, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	timing := defaultTiming()
	if yamlCfg.Timing != nil {
		if err := mergo.Merge(&timing, yamlCfg.Timing, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging timing config: %w", err)
		}
	}

	sandbox := defaultSandbox()
	if yamlCfg.Sandbox != nil {
		if err := mergo.Merge(&sandbox, yamlCfg.Sandbox, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging sandbox config: %w", err)
		}
	}

	analyzer := defaultAnalyzer()
	if yamlCfg.Analyzer != nil {
		if err := mergo.Merge(&analyzer, yamlCfg.Analyzer, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging analyzer config: %w", err)
		}
	}

	store := defaultStore()
	if yamlCfg.Store != nil {
		if err := mergo.Merge(&store, yamlCfg.Store, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging store config: %w", err)
		}
	}

	server := defaultServer()
	if yamlCfg.Server != nil {
		if err := mergo.Merge(&server, yamlCfg.Server, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging server config: %w", err)
		}
	}

	return &Config{
		configDir: configDir,
		Models:    models,
		Project:   project,
		Timing:    timing,
		Sandbox:   sandbox,
		Analyzer:  analyzer,
		Store:     store,
		Server:    server,
	}, nil
}

// loadYokeflowYAML reads and parses yokeflow.yaml from configDir. A missing
// file is not an error: every section stays nil and every built-in default
// applies, matching a fresh install with no config file yet written.
func loadYokeflowYAML(configDir string) (*YAMLConfig, error) {
	var cfg YAMLConfig
	path := filepath.Join(configDir, "yokeflow.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, err
	}

	data = ExpandEnv(data)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	return &cfg, nil
}
