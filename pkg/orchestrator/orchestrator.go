// Package orchestrator implements the session lifecycle state machine from
// spec.md §4.5: admission, the initialization and coding loops, the
// three-level stop semantics, and the stale-session sweeper. It is grounded
// in the teacher's pkg/agent/orchestrator.SubAgentRunner for the
// mutex-protected per-scope registry and cancel-func bookkeeping, adapted
// from "one registry entry per sub-agent" to "one registry entry per
// project" since this orchestrator serializes sessions within a project
// rather than fanning them out.
package orchestrator

import (
	"context"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dynamous-community/YokeFlow/pkg/agentrunner"
	"github.com/dynamous-community/YokeFlow/pkg/broadcast"
	"github.com/dynamous-community/YokeFlow/pkg/models"
	"github.com/dynamous-community/YokeFlow/pkg/sandbox"
	"github.com/dynamous-community/YokeFlow/pkg/store"
)

// PromptProvider resolves the system and user prompts for a session. The
// system prompt varies by session type and sandbox kind (spec.md §4.4); the
// user prompt is built from project and session state.
type PromptProvider interface {
	SystemPrompt(sessionType models.SessionType, sandboxKind models.SandboxKind) string
	UserPrompt(ctx context.Context, project *models.Project, session *models.Session) (string, error)
}

// QualityHooks lets the orchestrator drive the Quality Pipeline (spec.md
// §4.6) without this package importing it directly, so either side can be
// built and tested independently. A nil QualityHooks disables the step
// entirely rather than erroring.
type QualityHooks interface {
	// QuickCheck runs the deterministic quick check for a just-terminated
	// non-initializer session.
	QuickCheck(ctx context.Context, session *models.Session, eventLogPath string) error
	// MaybeDeepReview evaluates the deep-review trigger policy and, if it
	// fires, runs the LLM review. The orchestrator calls it on its own
	// goroutine, so the coding loop does not wait for it.
	MaybeDeepReview(ctx context.Context, session *models.Session)
	// AnalyzeCoverage runs the post-initialization test-coverage analysis.
	AnalyzeCoverage(ctx context.Context, projectID string) error
}

// Deps are the collaborators an Orchestrator is wired against.
type Deps struct {
	Store             *store.Store
	Runner            *agentrunner.Runner
	Bus               *broadcast.Bus
	Prompts           PromptProvider
	Quality           QualityHooks // optional
	MCP               *mcpsdk.ClientSession // optional, shared across sessions
	SandboxDefaults   sandbox.Config
	AutoContinueDelay time.Duration
}

// Orchestrator is the state machine described by spec.md §4.5. One instance
// serves every project; per-project state lives in a small registry guarded
// by its own mutex, never a package-level global.
type Orchestrator struct {
	store   *store.Store
	runner  *agentrunner.Runner
	bus     *broadcast.Bus
	prompts PromptProvider
	quality QualityHooks
	mcp     *mcpsdk.ClientSession

	sandboxDefaults   sandbox.Config
	autoContinueDelay time.Duration

	mu       sync.Mutex
	projects map[string]*projectState
}

// projectState holds the mutable, process-local bookkeeping for one
// project's loop: the cooperative stop flag and the cancellation handle of
// whichever session is currently running (nil when none is).
type projectState struct {
	mu               sync.Mutex
	stopAfterCurrent bool
	cancel           context.CancelFunc
}

// New builds an Orchestrator. deps.AutoContinueDelay of zero is honored
// literally (spec.md §8: "Auto-continue delay of 0 still publishes the
// auto_continue_delay event").
func New(deps Deps) *Orchestrator {
	return &Orchestrator{
		store:             deps.Store,
		runner:            deps.Runner,
		bus:               deps.Bus,
		prompts:           deps.Prompts,
		quality:           deps.Quality,
		mcp:               deps.MCP,
		sandboxDefaults:   deps.SandboxDefaults,
		autoContinueDelay: deps.AutoContinueDelay,
		projects:          make(map[string]*projectState),
	}
}

// state returns (creating if absent) the registry entry for a project.
func (o *Orchestrator) state(projectID string) *projectState {
	o.mu.Lock()
	defer o.mu.Unlock()
	ps, ok := o.projects[projectID]
	if !ok {
		ps = &projectState{}
		o.projects[projectID] = ps
	}
	return ps
}

func (o *Orchestrator) newSandbox(project *models.Project) (sandbox.Sandbox, error) {
	cfg := o.sandboxDefaults
	cfg.WorkspaceDir = project.WorkspacePath
	if project.Settings.SandboxKind != "" {
		cfg.Kind = project.Settings.SandboxKind
	}
	return sandbox.New(cfg)
}

// effectiveMaxIterations resolves a project's max-iterations override
// against the global default: nil or a pointer-to-zero both fall back to
// globalDefault, which itself uses 0 for "unlimited" (the coding loop
// applies no cap when handed 0).
func effectiveMaxIterations(projectOverride *int, globalDefault int) int {
	if projectOverride != nil && *projectOverride > 0 {
		return *projectOverride
	}
	return globalDefault
}

func mapTerminalStatus(s agentrunner.TerminalStatus) models.SessionStatus {
	switch s {
	case agentrunner.StatusCompleted:
		return models.SessionStatusCompleted
	case agentrunner.StatusInterrupted:
		return models.SessionStatusInterrupted
	default:
		return models.SessionStatusError
	}
}
