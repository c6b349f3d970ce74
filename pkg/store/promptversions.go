package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

const promptVersionSelect = `
	SELECT id, file_name, label, content, active, is_default, performance_summary, created_at
	FROM prompt_versions`

func scanPromptVersion(row pgx.Row) (*models.PromptVersion, error) {
	var v models.PromptVersion
	err := row.Scan(&v.ID, &v.FileName, &v.Label, &v.Content, &v.Active, &v.Default,
		&v.Summary, &v.CreatedAt)
	if err != nil {
		return nil, classify(err, "prompt version not found")
	}
	return &v, nil
}

// CreatePromptVersion inserts a new, inactive prompt version.
func (s *Store) CreatePromptVersion(ctx context.Context, v *models.PromptVersion) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO prompt_versions (id, file_name, label, content, is_default, performance_summary)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, v.ID, v.FileName, v.Label, v.Content, v.Default, v.Summary)
	if err := row.Scan(&v.CreatedAt); err != nil {
		return classify(err, "")
	}
	return nil
}

// GetPromptVersion fetches a prompt version by ID.
func (s *Store) GetPromptVersion(ctx context.Context, id string) (*models.PromptVersion, error) {
	return scanPromptVersion(s.pool.QueryRow(ctx, promptVersionSelect+` WHERE id = $1`, id))
}

// GetActivePromptVersion returns the file's currently active version.
func (s *Store) GetActivePromptVersion(ctx context.Context, fileName string) (*models.PromptVersion, error) {
	return scanPromptVersion(s.pool.QueryRow(ctx, promptVersionSelect+`
		WHERE file_name = $1 AND active
	`, fileName))
}

// ListPromptVersions returns every version recorded for a file, newest first.
func (s *Store) ListPromptVersions(ctx context.Context, fileName string) ([]*models.PromptVersion, error) {
	rows, err := s.pool.Query(ctx, promptVersionSelect+`
		WHERE file_name = $1 ORDER BY created_at DESC
	`, fileName)
	if err != nil {
		return nil, fmt.Errorf("listing prompt versions: %w", err)
	}
	defer rows.Close()

	var out []*models.PromptVersion
	for rows.Next() {
		v, err := scanPromptVersion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ActivatePromptVersion makes v the sole active version for its file,
// deactivating any current sibling in the same transaction so the partial
// unique index (file_name WHERE active) never sees more than one row.
func (s *Store) ActivatePromptVersion(ctx context.Context, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var fileName string
	err = tx.QueryRow(ctx, `SELECT file_name FROM prompt_versions WHERE id = $1`, id).Scan(&fileName)
	if err != nil {
		return classify(err, "prompt version not found")
	}

	if _, err := tx.Exec(ctx, `
		UPDATE prompt_versions SET active = FALSE WHERE file_name = $1 AND active
	`, fileName); err != nil {
		return fmt.Errorf("deactivating sibling versions: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE prompt_versions SET active = TRUE WHERE id = $1
	`, id); err != nil {
		return fmt.Errorf("activating prompt version: %w", err)
	}

	return tx.Commit(ctx)
}

// DeletePromptVersion removes a version. Callers must not delete the active
// version of a file that has no replacement queued; the store does not
// enforce this, it is an orchestrator-level concern.
func (s *Store) DeletePromptVersion(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM prompt_versions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting prompt version: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("prompt version not found")
	}
	return nil
}
