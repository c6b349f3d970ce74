// Command yokeflowd is the YokeFlow daemon: it wires the persistence,
// agent-runner, orchestrator, quality pipeline and analyzer layers behind
// the HTTP/WebSocket API described in spec.md §6, the way the teacher's
// cmd/tarsy/main.go wires its own services before starting Echo — except
// the teacher's build is gin-based and predates the e2e harness's
// Echo-based Server, so the wiring order below follows
// test/e2e/harness.go's NewTestApp instead: infra, then domain services,
// then the HTTP server last.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dynamous-community/YokeFlow/pkg/agentrunner"
	"github.com/dynamous-community/YokeFlow/pkg/analyzer"
	"github.com/dynamous-community/YokeFlow/pkg/api"
	"github.com/dynamous-community/YokeFlow/pkg/broadcast"
	"github.com/dynamous-community/YokeFlow/pkg/config"
	"github.com/dynamous-community/YokeFlow/pkg/orchestrator"
	"github.com/dynamous-community/YokeFlow/pkg/prompts"
	"github.com/dynamous-community/YokeFlow/pkg/quality"
	"github.com/dynamous-community/YokeFlow/pkg/sandbox"
	"github.com/dynamous-community/YokeFlow/pkg/store"
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("no .env file loaded", "path", envPath, "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configDir); err != nil {
		slog.Error("yokeflowd exited with error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configDir string) error {
	cfg, err := config.Initialize(ctx, configDir)
	if err != nil {
		return err
	}

	st, err := store.New(ctx, store.Config{
		RawDSN:   cfg.Store.DSN,
		MaxConns: cfg.Store.MaxConns,
	})
	if err != nil {
		return err
	}
	defer st.Close()

	llmAddr := getEnv("LLM_SERVICE_ADDR", "localhost:50051")
	transport, err := agentrunner.DialGRPC(llmAddr)
	if err != nil {
		return err
	}
	defer transport.Close()

	runner := agentrunner.New(transport)
	bus := broadcast.New()
	promptBuilder := prompts.NewBuilder(st)
	if err := promptBuilder.Refresh(ctx); err != nil {
		return err
	}

	qp := quality.New(st, transport)
	an := analyzer.New(st, transport, analyzer.Config{
		Model:     cfg.Models.Coding,
		LLMBudget: cfg.Analyzer.LLMBudget,
	})

	orch := orchestrator.New(orchestrator.Deps{
		Store:   st,
		Runner:  runner,
		Bus:     bus,
		Prompts: promptBuilder,
		Quality: qp,
		SandboxDefaults: sandbox.Config{
			Kind:        cfg.Sandbox.Type,
			Image:       cfg.Sandbox.Image,
			Network:     cfg.Sandbox.Network,
			MemoryLimit: cfg.Sandbox.MemoryLimit,
			CPULimit:    cfg.Sandbox.CPULimit,
			Ports:       cfg.Sandbox.Ports,
		},
		AutoContinueDelay: cfg.AutoContinueDelay(),
	})

	sweeper := orchestrator.NewStaleSweeper(st)
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweeper.Run(sweepCtx)

	sigScope := orch.NewSignalScope()
	sigScope.Start()
	defer sigScope.Close()

	server := api.NewServer(cfg, st, orch, qp, an, bus)
	server.SetSignalScope(sigScope)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.StartWithListener(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()
	slog.Info("yokeflowd listening", "addr", cfg.Server.Addr)

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
