package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

const sessionSelect = `
	SELECT id, project_id, number, type, model, status, created_at, started_at,
	       ended_at, error_message, interrupt_reason, metrics, max_iterations
	FROM sessions`

func scanSession(row pgx.Row) (*models.Session, error) {
	var s models.Session
	var metrics []byte
	err := row.Scan(&s.ID, &s.ProjectID, &s.Number, &s.Type, &s.Model, &s.Status,
		&s.CreatedAt, &s.StartedAt, &s.EndedAt, &s.ErrorMessage, &s.InterruptReason,
		&metrics, &s.MaxIterations)
	if err != nil {
		return nil, classify(err, "session not found")
	}
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &s.Metrics); err != nil {
			return nil, apierrors.Corrupt("decoding session metrics", err)
		}
	}
	return &s, nil
}

// allocateSessionAttempts bounds the allocator's retry loop against
// concurrent collisions on (project_id, number).
const allocateSessionAttempts = 5

// AllocateSession creates a new session row with the next dense number for
// the project. Two concurrent callers racing for the same number will have
// exactly one succeed; the loser retries with the next number (spec.md §4.1).
func (s *Store) AllocateSession(ctx context.Context, req models.CreateSessionRequest) (*models.Session, error) {
	var lastErr error
	for attempt := 0; attempt < allocateSessionAttempts; attempt++ {
		sess, err := s.tryAllocateSession(ctx, req)
		if err == nil {
			return sess, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("allocating session: exhausted retries: %w", lastErr)
}

func (s *Store) tryAllocateSession(ctx context.Context, req models.CreateSessionRequest) (*models.Session, error) {
	var next int
	err := s.pool.QueryRow(ctx, `
		SELECT coalesce(max(number), 0) + 1 FROM sessions WHERE project_id = $1
	`, req.ProjectID).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("computing next session number: %w", err)
	}

	id := uuid.NewString()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO sessions (id, project_id, number, type, model, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, project_id, number, type, model, status, created_at, started_at,
		          ended_at, error_message, interrupt_reason, metrics, max_iterations
	`, id, req.ProjectID, next, req.Type, req.Model, models.SessionStatusPending)

	sess, err := scanSession(row)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// GetActiveSession returns the project's single running session, if any.
// Absence is reported as apierrors.NotFound (spec.md §4.1 admission gate).
func (s *Store) GetActiveSession(ctx context.Context, projectID string) (*models.Session, error) {
	row := s.pool.QueryRow(ctx, sessionSelect+`
		WHERE project_id = $1 AND status = $2
	`, projectID, models.SessionStatusRunning)
	return scanSession(row)
}

// GetSession fetches a session by ID.
func (s *Store) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return scanSession(s.pool.QueryRow(ctx, sessionSelect+` WHERE id = $1`, id))
}

// GetSessionByNumber fetches a session by its project-scoped number.
func (s *Store) GetSessionByNumber(ctx context.Context, projectID string, number int) (*models.Session, error) {
	return scanSession(s.pool.QueryRow(ctx, sessionSelect+`
		WHERE project_id = $1 AND number = $2
	`, projectID, number))
}

// ListSessions returns every session for a project, newest first.
func (s *Store) ListSessions(ctx context.Context, projectID string) ([]*models.Session, error) {
	rows, err := s.pool.Query(ctx, sessionSelect+`
		WHERE project_id = $1 ORDER BY number DESC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []*models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// StartSession transitions a pending session to running and stamps started_at.
// Conflicts with the at-most-one-running invariant are caught at allocation
// time by the orchestrator's admission check, not here.
func (s *Store) StartSession(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions SET status = $1, started_at = now()
		WHERE id = $2 AND status = $3
	`, models.SessionStatusRunning, id, models.SessionStatusPending)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.StateViolation("session is not pending")
	}
	return nil
}

// MarkSessionTerminal finalizes a session. It is idempotent: calling it more
// than once is a no-op once the session has already reached a terminal
// status, and ended_at is only ever set once (spec.md §4.1).
func (s *Store) MarkSessionTerminal(ctx context.Context, id string, req models.MarkTerminalRequest) error {
	if !req.Status.IsTerminal() {
		return apierrors.Validation("mark-terminal status must be terminal")
	}

	metrics, err := json.Marshal(req.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions
		SET status = $1,
		    error_message = $2,
		    interrupt_reason = $3,
		    metrics = $4,
		    ended_at = coalesce(ended_at, now())
		WHERE id = $5 AND status NOT IN ($6, $7, $8)
	`, req.Status, req.ErrorMessage, req.InterruptReason, metrics, id,
		models.SessionStatusCompleted, models.SessionStatusError, models.SessionStatusInterrupted)
	if err != nil {
		return fmt.Errorf("marking session terminal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either already terminal (idempotent no-op) or missing entirely.
		if _, getErr := s.GetSession(ctx, id); getErr != nil {
			return getErr
		}
	}
	return nil
}

// CleanupStaleSessions transitions any session still marked running past its
// type-dependent inactivity threshold to interrupted. It is safe to call
// repeatedly and concurrently; each transition is a single conditional
// UPDATE scoped by status and age. Returns the IDs it transitioned.
func (s *Store) CleanupStaleSessions(ctx context.Context) ([]string, error) {
	var ids []string
	for _, t := range []models.SessionType{
		models.SessionTypeInitializer,
		models.SessionTypeCoding,
		models.SessionTypeReview,
	} {
		cutoff := time.Now().Add(-t.StaleThreshold())
		rows, err := s.pool.Query(ctx, `
			UPDATE sessions
			SET status = $1,
			    interrupt_reason = 'stale: exceeded inactivity threshold',
			    ended_at = coalesce(ended_at, now())
			WHERE type = $2 AND status = $3 AND started_at < $4
			RETURNING id
		`, models.SessionStatusInterrupted, t, models.SessionStatusRunning, cutoff)
		if err != nil {
			return ids, fmt.Errorf("sweeping stale %s sessions: %w", t, err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return ids, fmt.Errorf("scanning stale session id: %w", err)
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return ids, err
		}
	}
	return ids, nil
}

// CountSessions reports how many sessions exist for a project.
func (s *Store) CountSessions(ctx context.Context, projectID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM sessions WHERE project_id = $1`, projectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}
