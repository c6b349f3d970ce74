// Package prompts builds the system and user prompts the Agent Runner
// submits for each session (spec.md §4.4), implementing
// pkg/orchestrator.PromptProvider. Grounded on the teacher's
// pkg/agent/prompt.PromptBuilder: a small stateless-per-call type that
// composes a system message from static instruction templates and a user
// message from request state via strings.Builder, rather than a template
// engine.
package prompts

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
	"github.com/dynamous-community/YokeFlow/pkg/models"
	"github.com/dynamous-community/YokeFlow/pkg/store"
)

// FileName returns the prompt_versions.file_name a session type's system
// prompt is stored and edited under, matching pkg/analyzer's
// defaultTargetFile convention.
func FileName(sessionType models.SessionType) string {
	if sessionType == models.SessionTypeInitializer {
		return "initializer_system_prompt.md"
	}
	return "coding_system_prompt.md"
}

// Builder resolves system prompts from the store's active prompt versions,
// falling back to the compiled-in defaults, and builds user prompts from
// project/session state. PromptProvider.SystemPrompt takes no context (the
// Agent Runner calls it on the hot path before a session starts), so the
// active content is cached in memory and refreshed explicitly rather than
// queried per call.
type Builder struct {
	store *store.Store

	mu     sync.RWMutex
	active map[string]string // file name -> content
}

// NewBuilder builds a Builder bound to a store. Callers should call Refresh
// once at startup, and again after any prompt_versions activation (the
// apply-proposal flow, or a manual activation through the API), so newly
// activated content takes effect on the next session.
func NewBuilder(s *store.Store) *Builder {
	return &Builder{store: s, active: make(map[string]string)}
}

// Refresh reloads the active content for both known prompt files. A file
// with no active version yet is simply absent from the cache, leaving the
// compiled-in default in effect.
func (b *Builder) Refresh(ctx context.Context) error {
	files := []string{FileName(models.SessionTypeInitializer), FileName(models.SessionTypeCoding)}
	fresh := make(map[string]string, len(files))
	for _, f := range files {
		v, err := b.store.GetActivePromptVersion(ctx, f)
		if err != nil {
			if apierrors.Is(err, apierrors.KindNotFound) {
				continue
			}
			return fmt.Errorf("loading active prompt version for %s: %w", f, err)
		}
		fresh[f] = v.Content
	}

	b.mu.Lock()
	b.active = fresh
	b.mu.Unlock()
	slog.Info("prompts: refreshed active versions", "files", len(fresh))
	return nil
}

// SystemPrompt implements pkg/orchestrator.PromptProvider.
func (b *Builder) SystemPrompt(sessionType models.SessionType, sandboxKind models.SandboxKind) string {
	content := b.cachedOrDefault(sessionType)

	switch sandboxKind {
	case models.SandboxKindContainer:
		content += containerSandboxNote
	case models.SandboxKindLocal:
		content += localSandboxNote
	}
	return content
}

func (b *Builder) cachedOrDefault(sessionType models.SessionType) string {
	b.mu.RLock()
	content, ok := b.active[FileName(sessionType)]
	b.mu.RUnlock()
	if ok {
		return content
	}

	switch sessionType {
	case models.SessionTypeInitializer:
		return defaultInitializerSystemPrompt
	case models.SessionTypeReview:
		return defaultReviewSystemPrompt
	default:
		return defaultCodingSystemPrompt
	}
}

// UserPrompt implements pkg/orchestrator.PromptProvider.
func (b *Builder) UserPrompt(ctx context.Context, project *models.Project, session *models.Session) (string, error) {
	if session.Type == models.SessionTypeInitializer {
		return b.buildInitializerUserPrompt(project), nil
	}
	return b.buildCodingUserPrompt(ctx, project)
}

func (b *Builder) buildInitializerUserPrompt(project *models.Project) string {
	var sb strings.Builder
	sb.WriteString("Project: ")
	sb.WriteString(project.Name)
	sb.WriteString("\n\n")
	sb.WriteString("Specification:\n\n")
	if project.SpecText != "" {
		sb.WriteString(project.SpecText)
	} else {
		sb.WriteString("(no specification text recorded; read it from the workspace instead.)")
	}
	return sb.String()
}

func (b *Builder) buildCodingUserPrompt(ctx context.Context, project *models.Project) (string, error) {
	progress, err := b.store.GetProjectProgress(ctx, project.ID)
	if err != nil {
		return "", fmt.Errorf("loading project progress: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Project: ")
	sb.WriteString(project.Name)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Progress so far: %d/%d epics done, %d/%d tasks done.\n\n",
		progress.CompletedEpics, progress.TotalEpics, progress.CompletedTasks, progress.TotalTasks)

	next, err := b.nextPendingTask(ctx, project.ID)
	if err != nil {
		return "", err
	}
	if next == nil {
		sb.WriteString("No pending tasks remain. Double-check the task list through the task-manager tool; if everything is genuinely done, say so and stop.")
		return sb.String(), nil
	}

	sb.WriteString("Next task:\n")
	sb.WriteString(next.Description)
	if next.Action != "" {
		sb.WriteString("\nSuggested action: ")
		sb.WriteString(next.Action)
	}
	return sb.String(), nil
}

// nextPendingTask returns the first not-done task in the project's
// standard ordering (highest epic priority first, then task ordering —
// ListTasksByProject's own ORDER BY), or nil if none remains.
func (b *Builder) nextPendingTask(ctx context.Context, projectID string) (*models.Task, error) {
	tasks, err := b.store.ListTasksByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing project tasks: %w", err)
	}
	for _, task := range tasks {
		if task.Status != models.TaskStatusDone {
			return task, nil
		}
	}
	return nil, nil
}
