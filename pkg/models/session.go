package models

import "time"

// SessionType distinguishes the three kinds of agent session.
type SessionType string

// Session types.
const (
	SessionTypeInitializer SessionType = "initializer"
	SessionTypeCoding      SessionType = "coding"
	SessionTypeReview      SessionType = "review"
)

// SessionStatus enumerates the lifecycle of a Session.
type SessionStatus string

// Session statuses.
const (
	SessionStatusPending     SessionStatus = "pending"
	SessionStatusRunning     SessionStatus = "running"
	SessionStatusCompleted   SessionStatus = "completed"
	SessionStatusError       SessionStatus = "error"
	SessionStatusInterrupted SessionStatus = "interrupted"
)

// IsTerminal reports whether the status is one a session can only reach once.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case SessionStatusCompleted, SessionStatusError, SessionStatusInterrupted:
		return true
	default:
		return false
	}
}

// StaleThreshold returns the inactivity cap for a session type, per spec §4.1.
func (t SessionType) StaleThreshold() time.Duration {
	switch t {
	case SessionTypeInitializer:
		return 30 * time.Minute
	case SessionTypeCoding:
		return 10 * time.Minute
	case SessionTypeReview:
		return 5 * time.Minute
	default:
		return 10 * time.Minute
	}
}

// Session is a single bounded run of the agent against a project.
type Session struct {
	ID                string                 `json:"id"`
	ProjectID         string                 `json:"project_id"`
	Number            int                    `json:"number"`
	Type              SessionType            `json:"type"`
	Model             string                 `json:"model"`
	Status            SessionStatus          `json:"status"`
	CreatedAt         time.Time              `json:"created_at"`
	StartedAt         *time.Time             `json:"started_at,omitempty"`
	EndedAt           *time.Time             `json:"ended_at,omitempty"`
	ErrorMessage      string                 `json:"error_message,omitempty"`
	InterruptReason   string                 `json:"interrupt_reason,omitempty"`
	Metrics           map[string]interface{} `json:"metrics,omitempty"`
	MaxIterations     int                    `json:"max_iterations,omitempty"`
}

// CreateSessionRequest contains fields accepted by the allocator.
type CreateSessionRequest struct {
	ProjectID string
	Type      SessionType
	Model     string
}

// MarkTerminalRequest contains fields used to finalize a session.
type MarkTerminalRequest struct {
	Status          SessionStatus
	ErrorMessage    string
	InterruptReason string
	Metrics         map[string]interface{}
}

// RunnerSummary is what the Agent Runner hands back after one session.
type RunnerSummary struct {
	MessageCount        int            `json:"message_count"`
	ToolUseCount        int            `json:"tool_use_count"`
	ToolErrorCount      int            `json:"tool_error_count"`
	TasksCompleted      int            `json:"tasks_completed"`
	TestsPassed         int            `json:"tests_passed"`
	BrowserVerifications int          `json:"browser_verifications"`
	TokensInput         int            `json:"tokens_input"`
	TokensOutput        int            `json:"tokens_output"`
	TokensCacheCreation int            `json:"tokens_cache_creation"`
	TokensCacheRead     int            `json:"tokens_cache_read"`
	CostUSD             float64        `json:"cost_usd"`
	ResponseLength      int            `json:"response_length"`
	DurationSeconds     float64        `json:"duration_seconds"`
}

// AsMap flattens the summary into the metrics blob stored on Session.
func (s RunnerSummary) AsMap() map[string]interface{} {
	return map[string]interface{}{
		"message_count":          s.MessageCount,
		"tool_use_count":         s.ToolUseCount,
		"tool_error_count":       s.ToolErrorCount,
		"tasks_completed":        s.TasksCompleted,
		"tests_passed":           s.TestsPassed,
		"browser_verifications":  s.BrowserVerifications,
		"tokens_input":           s.TokensInput,
		"tokens_output":          s.TokensOutput,
		"tokens_cache_creation":  s.TokensCacheCreation,
		"tokens_cache_read":      s.TokensCacheRead,
		"cost_usd":               s.CostUSD,
		"response_length":        s.ResponseLength,
		"duration_seconds":       s.DurationSeconds,
	}
}
