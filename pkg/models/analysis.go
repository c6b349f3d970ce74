package models

import "time"

// AnalysisStatus enumerates the lifecycle of a cross-project Analysis run.
type AnalysisStatus string

// Analysis statuses.
const (
	AnalysisStatusRunning   AnalysisStatus = "running"
	AnalysisStatusCompleted AnalysisStatus = "completed"
	AnalysisStatusFailed    AnalysisStatus = "failed"
)

// Analysis is one cross-project prompt-improvement aggregation run.
type Analysis struct {
	ID                     string                 `json:"id"`
	ProjectIDs             []string               `json:"project_ids"`
	SandboxKind            string                 `json:"sandbox_kind,omitempty"`
	Status                 AnalysisStatus         `json:"status"`
	TriggerSource          string                 `json:"trigger_source"`
	WindowStart            time.Time              `json:"window_start"`
	WindowEnd              time.Time              `json:"window_end"`
	SessionsAnalyzed       int                    `json:"sessions_analyzed"`
	IdentifiedPatterns     map[string]interface{} `json:"identified_patterns,omitempty"`
	EstimatedQualityImpact float64                `json:"estimated_quality_impact"`
	FailureReason          string                 `json:"failure_reason,omitempty"`
	CreatedAt              time.Time              `json:"created_at"`
	CompletedAt            *time.Time             `json:"completed_at,omitempty"`
}

// ProposalChangeKind enumerates how a Proposal modifies its target prompt file.
type ProposalChangeKind string

// Proposal change kinds.
const (
	ProposalChangeAddition     ProposalChangeKind = "addition"
	ProposalChangeModification ProposalChangeKind = "modification"
	ProposalChangeDeletion     ProposalChangeKind = "deletion"
)

// ProposalStatus enumerates the lifecycle of a Proposal.
type ProposalStatus string

// Proposal statuses.
const (
	ProposalStatusProposed    ProposalStatus = "proposed"
	ProposalStatusAccepted    ProposalStatus = "accepted"
	ProposalStatusRejected    ProposalStatus = "rejected"
	ProposalStatusImplemented ProposalStatus = "implemented"
)

// Proposal is one suggested change against a specific prompt file.
type Proposal struct {
	ID              string             `json:"id"`
	AnalysisID      string             `json:"analysis_id"`
	TargetFile      string             `json:"target_file"`
	SectionName     string             `json:"section_name"`
	ChangeKind      ProposalChangeKind `json:"change_kind"`
	OriginalText    string             `json:"original_text,omitempty"`
	ProposedText    string             `json:"proposed_text"`
	Rationale       string             `json:"rationale"`
	Evidence        []string           `json:"evidence,omitempty"`
	Confidence      int                `json:"confidence"`
	Status          ProposalStatus     `json:"status"`
	AppliedAt       *time.Time         `json:"applied_at,omitempty"`
	AppliedBy       string             `json:"applied_by,omitempty"`
	AppliedVersion  string             `json:"applied_version,omitempty"`
}

// PromptVersion is one named, possibly-active revision of a prompt file.
type PromptVersion struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	Label       string    `json:"label"`
	Content     string    `json:"content"`
	Active      bool      `json:"active"`
	Default     bool      `json:"default"`
	Summary     string    `json:"performance_summary,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
