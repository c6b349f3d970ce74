package orchestrator

import (
	"context"
	"time"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
	"github.com/dynamous-community/YokeFlow/pkg/broadcast"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// StartInitialization runs exactly one initializer session. It requires
// that no epics exist yet for the project (spec.md §4.5).
func (o *Orchestrator) StartInitialization(ctx context.Context, projectID, model string) (*models.Session, error) {
	epics, err := o.store.ListEpics(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(epics) > 0 {
		return nil, apierrors.StateViolation("project already has epics; initialization already ran")
	}

	sess, err := o.StartSession(ctx, projectID, models.SessionTypeInitializer, model)
	if err != nil {
		o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeInitializationError, map[string]interface{}{
			"error": err.Error(),
		}))
		return nil, err
	}

	if sess.Status == models.SessionStatusCompleted {
		o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeInitializationComplete, map[string]interface{}{
			"session_id": sess.ID,
		}))
	} else {
		o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeInitializationError, map[string]interface{}{
			"session_id": sess.ID,
			"status":     string(sess.Status),
		}))
	}
	return sess, nil
}

// StartCodingSessions drives the auto-continue loop from spec.md §4.5. It
// requires at least one epic to exist and returns the last session started
// (nil if the loop stopped before starting any).
func (o *Orchestrator) StartCodingSessions(ctx context.Context, projectID, model string, maxIterations int) (*models.Session, error) {
	epics, err := o.store.ListEpics(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(epics) == 0 {
		return nil, apierrors.StateViolation("project has no epics; run initialization first")
	}

	ps := o.state(projectID)
	var last *models.Session
	erroredOut := false

	for iteration := 0; ; iteration++ {
		if maxIterations > 0 && iteration >= maxIterations {
			break
		}

		ps.mu.Lock()
		stop := ps.stopAfterCurrent
		ps.stopAfterCurrent = false
		ps.mu.Unlock()
		if stop {
			o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeAutoContinueStopped, map[string]interface{}{
				"reason": "stop_after_current",
			}))
			break
		}

		progress, err := o.store.GetProjectProgress(ctx, projectID)
		if err != nil {
			return last, err
		}
		if progress.AllEpicsComplete() {
			o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeAllEpicsComplete, nil))
			break
		}

		if iteration > 0 {
			o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeAutoContinueDelay, map[string]interface{}{
				"seconds": o.autoContinueDelay.Seconds(),
			}))
			select {
			case <-time.After(o.autoContinueDelay):
			case <-ctx.Done():
				o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeAutoContinueStopped, map[string]interface{}{
					"reason": "cancelled",
				}))
				return last, ctx.Err()
			}
		}

		sess, err := o.StartSession(ctx, projectID, models.SessionTypeCoding, model)
		if err != nil {
			erroredOut = true
			o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeCodingSessionsError, map[string]interface{}{
				"error": err.Error(),
			}))
			return last, err
		}
		last = sess

		if sess.Status == models.SessionStatusError || sess.Status == models.SessionStatusInterrupted {
			erroredOut = true
			o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeCodingSessionsError, map[string]interface{}{
				"session_id": sess.ID,
				"status":     string(sess.Status),
			}))
			break
		}

		taskProgress, err := o.store.GetProjectProgress(ctx, projectID)
		if err != nil {
			return last, err
		}
		if taskProgress.AllTasksComplete() {
			if err := o.store.MarkProjectComplete(ctx, projectID); err != nil {
				return last, err
			}
			o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeProjectComplete, nil))
			break
		}
	}

	if !erroredOut {
		o.bus.Publish(projectID, broadcast.NewEvent(broadcast.TypeCodingSessionsComplete, map[string]interface{}{}))
	}
	return last, nil
}
