package config

import "github.com/dynamous-community/YokeFlow/pkg/models"

// Built-in defaults applied before the user's yokeflow.yaml is merged on
// top, mirroring the teacher's GetBuiltinConfig/DefaultQueueConfig split.

func defaultModels() ModelsConfig {
	return ModelsConfig{
		Initializer: "claude-opus-4-6",
		Coding:      "claude-sonnet-4-5",
	}
}

func defaultProject() ProjectDefaults {
	return ProjectDefaults{
		DefaultGenerationsDir: "./generations",
		MaxIterations:         0, // unlimited
	}
}

func defaultTiming() TimingConfig {
	return TimingConfig{AutoContinueDelaySeconds: 5}
}

func defaultSandbox() SandboxConfig {
	return SandboxConfig{
		Type:        models.SandboxKindContainer,
		Image:       "yokeflow/sandbox:latest",
		Network:     "bridge",
		MemoryLimit: "2g",
		CPULimit:    "2",
	}
}

func defaultAnalyzer() AnalyzerConfig {
	return AnalyzerConfig{MinSessions: 5, WindowDays: 7, LLMBudget: 3}
}

func defaultStore() StoreConfig {
	return StoreConfig{
		DSN:           "postgres://localhost:5432/yokeflow?sslmode=disable",
		MaxConns:      10,
		MigrationsDir: "migrations",
	}
}

func defaultServer() ServerConfig {
	return ServerConfig{Addr: ":8090"}
}
