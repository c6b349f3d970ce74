// Package models holds the entity and request/response types persisted and
// exchanged by the orchestrator. Unlike the teacher repo these are plain
// structs rather than ent-generated types — see DESIGN.md for why the
// code-generated ORM was replaced by hand-written pgx-backed types.
package models

import "time"

// SandboxKind identifies which sandbox implementation a project uses.
type SandboxKind string

// Sandbox kinds.
const (
	SandboxKindContainer SandboxKind = "container"
	SandboxKindLocal     SandboxKind = "local"
)

// ProjectSettings holds per-project overrides of the global configuration.
type ProjectSettings struct {
	SandboxKind    SandboxKind `json:"sandbox_kind,omitempty"`
	InitModel      string      `json:"init_model,omitempty"`
	CodingModel    string      `json:"coding_model,omitempty"`
	MaxIterations  *int        `json:"max_iterations,omitempty"` // nil or 0 both fall back to the global default (0 = unlimited)
	AutoContinue   bool        `json:"auto_continue"`
}

// Project is the top-level unit of work: one target codebase driven through
// repeated agent sessions.
type Project struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	SpecText        string                 `json:"spec_text,omitempty"`
	SpecPath        string                 `json:"spec_path,omitempty"`
	WorkspacePath   string                 `json:"workspace_path"`
	Settings        ProjectSettings        `json:"settings"`
	EnvConfigured   bool                   `json:"env_configured"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
}

// IsComplete reports whether the project has been marked complete.
func (p *Project) IsComplete() bool {
	return p.CompletedAt != nil
}

// CreateProjectRequest contains fields accepted when creating a project.
type CreateProjectRequest struct {
	Name          string          `json:"name"`
	SpecText      string          `json:"spec_text,omitempty"`
	SpecPath      string          `json:"spec_path,omitempty"`
	WorkspacePath string          `json:"workspace_path"`
	Settings      ProjectSettings `json:"settings,omitempty"`
}

// ProjectFilters narrows a project listing.
type ProjectFilters struct {
	NameContains string
	Completed    *bool
	Limit        int
	Offset       int
}
