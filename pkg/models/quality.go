package models

// QualityCheckKind distinguishes the deterministic quick check from the
// LLM-generated deep review.
type QualityCheckKind string

// Quality check kinds.
const (
	QualityCheckKindQuick QualityCheckKind = "quick"
	QualityCheckKindDeep  QualityCheckKind = "deep"
)

// QualityCheckStatus tracks whether a deep review actually produced output.
type QualityCheckStatus string

// Quality check statuses.
const (
	QualityCheckStatusOK     QualityCheckStatus = "ok"
	QualityCheckStatusFailed QualityCheckStatus = "failed"
)

// QuickMetrics is the deterministic metric set extracted from the event log.
type QuickMetrics struct {
	TotalToolUses             int     `json:"total_tool_uses"`
	ErrorCount                int     `json:"error_count"`
	ErrorRate                 float64 `json:"error_rate"`
	PlaywrightCount            int     `json:"playwright_count"`
	PlaywrightScreenshotCount int     `json:"playwright_screenshot_count"`
	TokensInput                int     `json:"tokens_input"`
	TokensOutput               int     `json:"tokens_output"`
	CostUSD                     float64 `json:"cost_usd"`
	DurationSeconds             float64 `json:"duration_seconds"`
}

// QualityCheck is the record attached to a terminated session.
type QualityCheck struct {
	ID                string             `json:"id"`
	SessionID         string             `json:"session_id"`
	Kind              QualityCheckKind   `json:"kind"`
	Status            QualityCheckStatus `json:"status"`
	OverallRating     int                `json:"overall_rating"`
	Metrics           QuickMetrics       `json:"metrics"`
	CriticalIssues    []string           `json:"critical_issues,omitempty"`
	Warnings          []string           `json:"warnings,omitempty"`
	ReviewText        string             `json:"review_text,omitempty"`
	Recommendations   []string           `json:"recommendations,omitempty"`
}

// CoverageBreakdown is the per-epic slice of a test-coverage analysis.
type CoverageBreakdown struct {
	EpicID          string  `json:"epic_id"`
	EpicName        string  `json:"epic_name"`
	TotalTasks      int     `json:"total_tasks"`
	TasksWithTests  int     `json:"tasks_with_tests"`
	CoveragePercent float64 `json:"coverage_percent"`
	Warning         string  `json:"warning,omitempty"`
}

// CoverageAnalysis is the result stored on Project.Metadata after
// initialization, aggregating tasks and tests by epic.
type CoverageAnalysis struct {
	TotalTasks      int                 `json:"total_tasks"`
	TasksWithTests  int                 `json:"tasks_with_tests"`
	CoveragePercent float64             `json:"coverage_percent"`
	PerEpic         []CoverageBreakdown `json:"per_epic"`
	Warnings        []string            `json:"warnings,omitempty"`
}
