package store

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

var projectNameRE = regexp.MustCompile(`^[a-z0-9_-]+$`)

// ValidateProjectName enforces the spec.md §3 naming rule.
func ValidateProjectName(name string) error {
	if !projectNameRE.MatchString(name) {
		return apierrors.Validation("project name must match [a-z0-9_-]+")
	}
	return nil
}

// CreateProject inserts a new project row.
func (s *Store) CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error) {
	if err := ValidateProjectName(req.Name); err != nil {
		return nil, err
	}

	settings, err := json.Marshal(req.Settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}

	p := &models.Project{
		ID:            uuid.NewString(),
		Name:          req.Name,
		SpecText:      req.SpecText,
		SpecPath:      req.SpecPath,
		WorkspacePath: req.WorkspacePath,
		Settings:      req.Settings,
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO projects (id, name, spec_text, spec_path, workspace_path, settings)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.SpecText, p.SpecPath, p.WorkspacePath, settings)

	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, classify(err, "")
	}
	return p, nil
}

// GetProject fetches a project by ID.
func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.scanProject(s.pool.QueryRow(ctx, projectSelect+` WHERE id = $1`, id))
}

// GetProjectByName fetches a project by its unique name.
func (s *Store) GetProjectByName(ctx context.Context, name string) (*models.Project, error) {
	return s.scanProject(s.pool.QueryRow(ctx, projectSelect+` WHERE name = $1`, name))
}

const projectSelect = `
	SELECT id, name, spec_text, spec_path, workspace_path, settings,
	       env_configured, metadata, created_at, updated_at, completed_at
	FROM projects`

func (s *Store) scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	var settings, metadata []byte
	err := row.Scan(&p.ID, &p.Name, &p.SpecText, &p.SpecPath, &p.WorkspacePath,
		&settings, &p.EnvConfigured, &metadata, &p.CreatedAt, &p.UpdatedAt, &p.CompletedAt)
	if err != nil {
		return nil, classify(err, "project not found")
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &p.Settings); err != nil {
			return nil, apierrors.Corrupt("decoding project settings", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return nil, apierrors.Corrupt("decoding project metadata", err)
		}
	}
	return &p, nil
}

// ListProjects returns projects matching the given filters, newest first.
func (s *Store) ListProjects(ctx context.Context, f models.ProjectFilters) ([]*models.Project, error) {
	query := projectSelect + ` WHERE 1=1`
	args := []interface{}{}
	if f.NameContains != "" {
		args = append(args, "%"+f.NameContains+"%")
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	if f.Completed != nil {
		if *f.Completed {
			query += " AND completed_at IS NOT NULL"
		} else {
			query += " AND completed_at IS NULL"
		}
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []*models.Project
	for rows.Next() {
		p, err := s.scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RenameProject renames a project, failing with Conflict on a name clash
// and NotFound when the project doesn't exist (spec.md §4.1).
func (s *Store) RenameProject(ctx context.Context, id, newName string) error {
	if err := ValidateProjectName(newName); err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE projects SET name = $1, updated_at = now() WHERE id = $2
	`, newName, id)
	if err != nil {
		if isUniqueViolation(err) {
			return apierrors.Conflict("project name already taken")
		}
		return fmt.Errorf("renaming project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("project not found")
	}
	return nil
}

// UpdateProjectSettings replaces a project's settings blob.
func (s *Store) UpdateProjectSettings(ctx context.Context, id string, settings models.ProjectSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE projects SET settings = $1, updated_at = now() WHERE id = $2
	`, data, id)
	if err != nil {
		return fmt.Errorf("updating project settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("project not found")
	}
	return nil
}

// SetProjectEnvConfigured flips the env-configured flag.
func (s *Store) SetProjectEnvConfigured(ctx context.Context, id string, configured bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE projects SET env_configured = $1, updated_at = now() WHERE id = $2
	`, configured, id)
	if err != nil {
		return fmt.Errorf("updating env_configured: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("project not found")
	}
	return nil
}

// SetProjectWorkspacePath updates the local workspace path.
func (s *Store) SetProjectWorkspacePath(ctx context.Context, id, path string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE projects SET workspace_path = $1, updated_at = now() WHERE id = $2
	`, path, id)
	if err != nil {
		return fmt.Errorf("updating workspace path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("project not found")
	}
	return nil
}

// UpdateProjectMetadata merges keys into a project's metadata blob.
func (s *Store) UpdateProjectMetadata(ctx context.Context, id string, patch map[string]interface{}) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var current []byte
	err = tx.QueryRow(ctx, `SELECT metadata FROM projects WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		return classify(err, "project not found")
	}

	merged := map[string]interface{}{}
	if len(current) > 0 {
		if err := json.Unmarshal(current, &merged); err != nil {
			return apierrors.Corrupt("decoding project metadata", err)
		}
	}
	for k, v := range patch {
		merged[k] = v
	}
	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE projects SET metadata = $1, updated_at = now() WHERE id = $2
	`, data, id); err != nil {
		return fmt.Errorf("updating metadata: %w", err)
	}

	return tx.Commit(ctx)
}

// MarkProjectComplete sets the project's completion timestamp.
func (s *Store) MarkProjectComplete(ctx context.Context, id string) error {
	now := time.Now()
	tag, err := s.pool.Exec(ctx, `
		UPDATE projects SET completed_at = $1, updated_at = now() WHERE id = $2
	`, now, id)
	if err != nil {
		return fmt.Errorf("marking project complete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("project not found")
	}
	return nil
}

// ResetProject clears a project's generated work breakdown and completion
// state so it can be re-initialized from scratch, without discarding its
// session history. Callers are responsible for also deleting epics/tasks/
// tests via DeleteEpicsByProject before calling this.
func (s *Store) ResetProject(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE projects
		SET completed_at = NULL, env_configured = false, metadata = '{}', updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("resetting project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("project not found")
	}
	return nil
}

// DeleteProject removes a project and, by foreign-key cascade, every
// dependent epic/task/test/session/quality-check row (spec.md §3, §8).
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("project not found")
	}
	return nil
}
