package orchestrator

import (
	"context"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
)

// StopSession implements the immediate stop level (spec.md §4.5): it fires
// the cancellation handle of the project's currently-running session, if
// any. The session observes the cancellation at its next suspension point
// and terminates interrupted; StopSession itself does not wait for that.
func (o *Orchestrator) StopSession(projectID string) error {
	ps := o.state(projectID)
	ps.mu.Lock()
	cancel := ps.cancel
	ps.mu.Unlock()

	if cancel == nil {
		return apierrors.StateViolation("no session running for project")
	}
	cancel()
	return nil
}

// SetStopAfterCurrent implements the graceful stop level: the flag is
// checked at the top of the next coding-loop iteration only, so a running
// session always finishes normally. Setting it twice has the same effect as
// once (spec.md §8).
func (o *Orchestrator) SetStopAfterCurrent(projectID string) {
	ps := o.state(projectID)
	ps.mu.Lock()
	ps.stopAfterCurrent = true
	ps.mu.Unlock()
}

// ClearStopAfterCurrent cancels a pending graceful-stop request.
func (o *Orchestrator) ClearStopAfterCurrent(projectID string) {
	ps := o.state(projectID)
	ps.mu.Lock()
	ps.stopAfterCurrent = false
	ps.mu.Unlock()
}

// CancelInitialization implements the third stop level: it stops the
// running initializer session immediately and deletes every epic/task/test
// created so far, leaving the project's spec file and workspace directory
// untouched so initialization can be re-run (spec.md §4.5).
func (o *Orchestrator) CancelInitialization(ctx context.Context, projectID string) error {
	if err := o.StopSession(projectID); err != nil {
		return err
	}
	return o.store.DeleteEpicsByProject(ctx, projectID)
}
