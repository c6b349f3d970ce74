package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dynamous-community/YokeFlow/pkg/agentrunner"
	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
	"github.com/dynamous-community/YokeFlow/pkg/broadcast"
	"github.com/dynamous-community/YokeFlow/pkg/eventlog"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// StartSession runs the admission state machine from spec.md §4.5 steps
// 1-11: reads the project, rejects if one is already running, allocates a
// session number, provisions a sandbox, drives the Agent Runner, classifies
// the outcome, runs the quick quality check, and always tears the sandbox
// down. The in-process signal-handling scope named in step 4 is the
// responsibility of the process entrypoint, which cancels the session's
// context (via StopSession) on an interrupt signal; this method only needs
// to register that cancellation handle.
func (o *Orchestrator) StartSession(ctx context.Context, projectID string, sessType models.SessionType, model string) (*models.Session, error) {
	project, err := o.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	// GetActiveSession reports "no running session" as NotFound.
	if active, err := o.store.GetActiveSession(ctx, projectID); err != nil && !apierrors.Is(err, apierrors.KindNotFound) {
		return nil, err
	} else if err == nil && active != nil {
		started := "unknown"
		if active.StartedAt != nil {
			started = active.StartedAt.Format(time.RFC3339)
		}
		return nil, apierrors.Conflict(fmt.Sprintf("session #%d already running (started %s)", active.Number, started))
	}

	sess, err := o.store.AllocateSession(ctx, models.CreateSessionRequest{
		ProjectID: projectID,
		Type:      sessType,
		Model:     model,
	})
	if err != nil {
		return nil, err
	}

	ps := o.state(projectID)
	sessionCtx, cancel := context.WithCancel(ctx)
	ps.mu.Lock()
	ps.cancel = cancel
	ps.mu.Unlock()
	defer func() {
		ps.mu.Lock()
		ps.cancel = nil
		ps.mu.Unlock()
		cancel()
	}()

	if err := o.store.StartSession(ctx, sess.ID); err != nil {
		return nil, err
	}

	o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeSessionStarted, map[string]interface{}{
		"session_id": sess.ID,
		"number":     sess.Number,
		"type":       string(sess.Type),
	}))

	box, err := o.newSandbox(project)
	if err != nil {
		return o.terminate(ctx, projectID, sess, "", models.MarkTerminalRequest{
			Status:       models.SessionStatusError,
			ErrorMessage: fmt.Sprintf("creating sandbox: %v", err),
		})
	}
	if err := box.Start(sessionCtx); err != nil {
		return o.terminate(ctx, projectID, sess, "", models.MarkTerminalRequest{
			Status:       models.SessionStatusError,
			ErrorMessage: fmt.Sprintf("starting sandbox: %v", err),
		})
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		if err := box.Stop(stopCtx); err != nil {
			slog.Warn("orchestrator: sandbox stop failed", "project_id", projectID, "session_id", sess.ID, "error", err)
		}
	}()

	txtPath, jsonPath := eventlog.Paths(project.WorkspacePath, sess.Number, sess.CreatedAt)
	writer, err := eventlog.NewWriter(sess.ID, txtPath, jsonPath)
	if err != nil {
		return o.terminate(ctx, projectID, sess, "", models.MarkTerminalRequest{
			Status:       models.SessionStatusError,
			ErrorMessage: fmt.Sprintf("opening event log: %v", err),
		})
	}
	defer writer.Close()

	userPrompt, err := o.prompts.UserPrompt(ctx, project, sess)
	if err != nil {
		return o.terminate(ctx, projectID, sess, jsonPath, models.MarkTerminalRequest{
			Status:       models.SessionStatusError,
			ErrorMessage: fmt.Sprintf("building prompt: %v", err),
		})
	}

	router := agentrunner.NewToolRouter(box, o.mcp)
	result := o.runner.Run(sessionCtx, agentrunner.Params{
		SessionID:    sess.ID,
		Model:        model,
		SystemPrompt: o.prompts.SystemPrompt(sessType, project.Settings.SandboxKind),
		UserPrompt:   userPrompt,
		Router:       router,
		Log:          writer,
		Progress: func(e eventlog.Event) {
			o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeProgress, map[string]interface{}{
				"session_id": sess.ID,
				"kind":       string(e.Kind),
				"tool_name":  e.ToolName,
				"ok":         e.OK,
				"summary":    e.Summary,
			}))
		},
	})

	markReq := models.MarkTerminalRequest{
		Status:  mapTerminalStatus(result.Status),
		Metrics: result.Summary.AsMap(),
	}
	switch result.Status {
	case agentrunner.StatusError:
		markReq.ErrorMessage = result.ErrorMessage
	case agentrunner.StatusInterrupted:
		markReq.InterruptReason = "cancelled"
	}
	return o.terminate(ctx, projectID, sess, jsonPath, markReq)
}

// terminate records the final status, publishes the matching event, runs
// the quick quality check and deep-review trigger (when applicable), and
// returns the persisted session. It is the single place StartSession exits
// through, successful or not. eventLogPath is empty when the session never
// reached the point of opening an event log (sandbox or event-log failures).
func (o *Orchestrator) terminate(ctx context.Context, projectID string, sess *models.Session, eventLogPath string, req models.MarkTerminalRequest) (*models.Session, error) {
	if err := o.store.MarkSessionTerminal(ctx, sess.ID, req); err != nil {
		return nil, err
	}
	fresh, err := o.store.GetSession(ctx, sess.ID)
	if err != nil {
		return nil, err
	}

	switch fresh.Status {
	case models.SessionStatusCompleted:
		o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeSessionCompleted, map[string]interface{}{
			"session_id": fresh.ID, "number": fresh.Number,
		}))
	default:
		o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeSessionError, map[string]interface{}{
			"session_id": fresh.ID, "number": fresh.Number, "status": string(fresh.Status),
			"error": fresh.ErrorMessage,
		}))
	}

	if o.quality != nil && fresh.Status != models.SessionStatusInterrupted && eventLogPath != "" {
		if fresh.Type != models.SessionTypeInitializer {
			if err := o.quality.QuickCheck(ctx, fresh, eventLogPath); err != nil {
				slog.Warn("orchestrator: quick quality check failed", "session_id", fresh.ID, "error", err)
			}
			go o.quality.MaybeDeepReview(context.Background(), fresh)
		} else if fresh.Status == models.SessionStatusCompleted {
			if err := o.quality.AnalyzeCoverage(ctx, projectID); err != nil {
				slog.Warn("orchestrator: coverage analysis failed", "project_id", projectID, "error", err)
			}
		}
	}

	return fresh, nil
}
