package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// CreateEpic inserts a new epic.
func (s *Store) CreateEpic(ctx context.Context, req models.CreateEpicRequest) (*models.Epic, error) {
	e := &models.Epic{
		ID:          uuid.NewString(),
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      models.EpicStatusPending,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO epics (id, project_id, name, description, priority, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.ProjectID, e.Name, e.Description, e.Priority, e.Status)
	if err != nil {
		return nil, classify(err, "")
	}
	return e, nil
}

// ListEpics returns every epic belonging to a project.
func (s *Store) ListEpics(ctx context.Context, projectID string) ([]*models.Epic, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, project_id, name, description, priority, status
		FROM epics WHERE project_id = $1 ORDER BY priority DESC, name
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing epics: %w", err)
	}
	defer rows.Close()

	var out []*models.Epic
	for rows.Next() {
		var e models.Epic
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Name, &e.Description, &e.Priority, &e.Status); err != nil {
			return nil, fmt.Errorf("scanning epic: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// UpdateEpicStatus sets an epic's status.
func (s *Store) UpdateEpicStatus(ctx context.Context, id string, status models.EpicStatus) error {
	tag, err := s.pool.Exec(ctx, `UPDATE epics SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("updating epic status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("epic not found")
	}
	return nil
}

// CreateTask inserts a new task.
func (s *Store) CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	t := &models.Task{
		ID:          uuid.NewString(),
		EpicID:      req.EpicID,
		Description: req.Description,
		Action:      req.Action,
		Status:      models.TaskStatusPending,
		Ordering:    req.Ordering,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, epic_id, description, action, status, ordering)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, t.EpicID, t.Description, t.Action, t.Status, t.Ordering)
	if err != nil {
		return nil, classify(err, "")
	}
	return t, nil
}

// ListTasksByEpic returns every task belonging to an epic, in order.
func (s *Store) ListTasksByEpic(ctx context.Context, epicID string) ([]*models.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, epic_id, description, action, status, ordering
		FROM tasks WHERE epic_id = $1 ORDER BY ordering, id
	`, epicID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var out []*models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.EpicID, &t.Description, &t.Action, &t.Status, &t.Ordering); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// ListTasksByProject returns every task belonging to any epic of a project,
// highest epic priority first, used by pkg/prompts to pick the next
// pending task.
func (s *Store) ListTasksByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.epic_id, t.description, t.action, t.status, t.ordering
		FROM tasks t JOIN epics e ON e.id = t.epic_id
		WHERE e.project_id = $1 ORDER BY e.priority DESC, t.ordering
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing project tasks: %w", err)
	}
	defer rows.Close()

	var out []*models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.EpicID, &t.Description, &t.Action, &t.Status, &t.Ordering); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// UpdateTaskStatus sets a task's status.
func (s *Store) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	tag, err := s.pool.Exec(ctx, `UPDATE tasks SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("updating task status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("task not found")
	}
	return nil
}

// CreateTest inserts a new test.
func (s *Store) CreateTest(ctx context.Context, req models.CreateTestRequest) (*models.Test, error) {
	t := &models.Test{
		ID:          uuid.NewString(),
		TaskID:      req.TaskID,
		Description: req.Description,
		Status:      models.TestStatusPending,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tests (id, task_id, description, status)
		VALUES ($1, $2, $3, $4)
	`, t.ID, t.TaskID, t.Description, t.Status)
	if err != nil {
		return nil, classify(err, "")
	}
	return t, nil
}

// ListTestsByTask returns every test belonging to a task.
func (s *Store) ListTestsByTask(ctx context.Context, taskID string) ([]*models.Test, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, task_id, description, status, last_result
		FROM tests WHERE task_id = $1 ORDER BY id
	`, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing tests: %w", err)
	}
	defer rows.Close()

	var out []*models.Test
	for rows.Next() {
		var t models.Test
		if err := rows.Scan(&t.ID, &t.TaskID, &t.Description, &t.Status, &t.LastResult); err != nil {
			return nil, fmt.Errorf("scanning test: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// UpdateTestResult sets a test's status and last-run result.
func (s *Store) UpdateTestResult(ctx context.Context, id string, status models.TestStatus, result string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tests SET status = $1, last_result = $2 WHERE id = $3
	`, status, result, id)
	if err != nil {
		return fmt.Errorf("updating test result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apierrors.NotFound("test not found")
	}
	return nil
}

// ProjectProgress summarizes epic/task completion for the coding loop's
// stop conditions (spec.md §4.5).
type ProjectProgress struct {
	TotalEpics     int
	CompletedEpics int
	TotalTasks     int
	CompletedTasks int
}

// AllEpicsComplete reports whether every epic is done and at least one exists.
func (p ProjectProgress) AllEpicsComplete() bool {
	return p.TotalEpics > 0 && p.CompletedEpics == p.TotalEpics
}

// AllTasksComplete reports whether every task is done and at least one exists.
func (p ProjectProgress) AllTasksComplete() bool {
	return p.TotalTasks > 0 && p.CompletedTasks == p.TotalTasks
}

// GetProjectProgress aggregates epic and task completion for a project.
func (s *Store) GetProjectProgress(ctx context.Context, projectID string) (ProjectProgress, error) {
	var pr ProjectProgress
	err := s.pool.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE true),
			count(*) FILTER (WHERE status = 'done')
		FROM epics WHERE project_id = $1
	`, projectID).Scan(&pr.TotalEpics, &pr.CompletedEpics)
	if err != nil {
		return pr, fmt.Errorf("aggregating epic progress: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE true),
			count(*) FILTER (WHERE t.status = 'done')
		FROM tasks t JOIN epics e ON e.id = t.epic_id
		WHERE e.project_id = $1
	`, projectID).Scan(&pr.TotalTasks, &pr.CompletedTasks)
	if err != nil {
		return pr, fmt.Errorf("aggregating task progress: %w", err)
	}
	return pr, nil
}

// DeleteEpicsByProject removes every epic (and by cascade, task/test) of a
// project — used by "cancel initialization" (spec.md §4.5).
func (s *Store) DeleteEpicsByProject(ctx context.Context, projectID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM epics WHERE project_id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("deleting epics: %w", err)
	}
	return nil
}
