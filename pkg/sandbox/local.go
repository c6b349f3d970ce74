package sandbox

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
)

// localSandbox runs commands directly on the host inside the project's
// workspace directory, with no process isolation beyond the working
// directory. Used when a project opts out of containerization.
type localSandbox struct {
	workspaceDir string
	started      bool
}

func newLocalSandbox(cfg Config) Sandbox {
	return &localSandbox{workspaceDir: cfg.WorkspaceDir}
}

func (l *localSandbox) Start(ctx context.Context) error {
	if l.workspaceDir == "" {
		return apierrors.Validation("local sandbox requires a workspace directory")
	}
	if err := os.MkdirAll(l.workspaceDir, 0o755); err != nil {
		return apierrors.External("creating workspace directory", err)
	}
	l.started = true
	return nil
}

func (l *localSandbox) Stop(ctx context.Context) error {
	l.started = false
	return nil
}

func (l *localSandbox) ExecuteCommand(ctx context.Context, command string) (CommandResult, error) {
	if !l.started {
		return CommandResult{}, apierrors.StateViolation("sandbox has not been started")
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.Dir = l.workspaceDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	rc := 0
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			rc = exitErr.ExitCode()
		} else {
			return CommandResult{}, apierrors.External("running local command", err)
		}
	}

	return CommandResult{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		ReturnCode: rc,
	}, nil
}

// Handle returns the workspace path, which is the only thing a local
// sandbox exposes for tool calls to target.
func (l *localSandbox) Handle() string { return l.workspaceDir }
