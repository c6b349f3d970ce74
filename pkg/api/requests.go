package api

import "github.com/dynamous-community/YokeFlow/pkg/models"

// renameProjectRequest is the body of PATCH /projects/:id/rename.
type renameProjectRequest struct {
	Name string `json:"name"`
}

// initializeRequest is the body of POST /projects/:id/initialize.
type initializeRequest struct {
	Model string `json:"model,omitempty"`
}

// codingStartRequest is the body of POST /projects/:id/coding-start.
type codingStartRequest struct {
	Model         string `json:"model,omitempty"`
	MaxIterations *int   `json:"max_iterations,omitempty"`
}

// setProposalStatusRequest is the body of PATCH /proposals/:proposalId/status.
type setProposalStatusRequest struct {
	Status models.ProposalStatus `json:"status"`
}

// applyProposalRequest is the body of POST /proposals/:proposalId/apply.
type applyProposalRequest struct {
	AppliedBy string `json:"applied_by"`
}

// triggerAnalysisRequest is the body of POST /analyses.
type triggerAnalysisRequest struct {
	TriggerSource string `json:"trigger_source,omitempty"`
	MinSessions   int    `json:"min_sessions,omitempty"`
	WindowDays    int    `json:"window_days,omitempty"`
	SandboxKind   string `json:"sandbox_kind,omitempty"`
}
