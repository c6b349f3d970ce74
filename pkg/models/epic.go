package models

// EpicStatus enumerates the lifecycle of an Epic.
type EpicStatus string

// Epic statuses.
const (
	EpicStatusPending    EpicStatus = "pending"
	EpicStatusInProgress EpicStatus = "in_progress"
	EpicStatusDone       EpicStatus = "done"
)

// Epic is a named body of work belonging to one Project.
type Epic struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Priority    int        `json:"priority"`
	Status      EpicStatus `json:"status"`
}

// CreateEpicRequest contains fields accepted when creating an epic.
type CreateEpicRequest struct {
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority"`
}
