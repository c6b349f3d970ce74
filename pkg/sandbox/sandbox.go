// Package sandbox provides the per-session isolated workspace the Agent
// Runner's tool calls execute against (spec.md §4.2). It mirrors the
// lifecycle shape of the teacher's sandbox-adjacent session runner in
// other_examples' recac project, but against the real docker/docker client
// instead of a hand-rolled exec wrapper.
package sandbox

import (
	"context"

	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// CommandResult is the outcome of one ExecuteCommand call.
type CommandResult struct {
	Stdout     string
	Stderr     string
	ReturnCode int
}

// Sandbox is a per-session scoped resource with the capability set named in
// spec.md §4.2: start, stop, execute_command. Implementations must make
// Stop safe to call after a failed or partial Start.
type Sandbox interface {
	// Start provisions the isolated workspace. For the container kind it
	// also allocates a stable handle tool calls can target.
	Start(ctx context.Context) error
	// Stop releases the resource. It must be safe to call multiple times
	// and after a failed Start; callers never propagate its error.
	Stop(ctx context.Context) error
	// ExecuteCommand runs a shell fragment inside the sandbox.
	ExecuteCommand(ctx context.Context, command string) (CommandResult, error)
	// Handle returns the opaque identifier the orchestrator passes through
	// to the Agent Runner so tool calls route into this sandbox. It is set
	// at construction (the container name, or the local workspace path)
	// and does not depend on Start.
	Handle() string
}

// Config configures a sandbox before it is bound to a single session.
type Config struct {
	Kind         models.SandboxKind
	Image        string
	Network      string
	MemoryLimit  string
	CPULimit     string
	Ports        []int
	WorkspaceDir string // host directory bound into the container, or used directly for local
}

// New builds the sandbox implementation selected by cfg.Kind; an empty kind
// selects the local sandbox. An unknown kind returns a plain error that
// carries no apierrors kind.
func New(cfg Config) (Sandbox, error) {
	switch cfg.Kind {
	case models.SandboxKindContainer:
		return newContainerSandbox(cfg)
	case models.SandboxKindLocal, "":
		return newLocalSandbox(cfg), nil
	default:
		return nil, &unknownKindError{kind: string(cfg.Kind)}
	}
}

type unknownKindError struct{ kind string }

func (e *unknownKindError) Error() string { return "sandbox: unknown kind " + e.kind }
