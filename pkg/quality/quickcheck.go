package quality

import (
	"context"
	"fmt"

	"github.com/dynamous-community/YokeFlow/pkg/eventlog"
	"github.com/dynamous-community/YokeFlow/pkg/models"
	"github.com/dynamous-community/YokeFlow/pkg/store"
)

// Pipeline runs the quick check, the deep-review trigger policy, and the
// test-coverage analysis (spec.md §4.6). It implements
// pkg/orchestrator.QualityHooks.
type Pipeline struct {
	store     *store.Store
	transport DeepReviewTransport
}

// DeepReviewTransport is the single-turn LLM call the deep review uses —
// satisfied by agentrunner.LLMTransport's Analyze method without this
// package importing agentrunner for its full streaming surface.
type DeepReviewTransport interface {
	Analyze(ctx context.Context, model, prompt string) (string, error)
}

// New builds a Pipeline. transport may be nil, in which case deep reviews
// are skipped (quick checks and coverage analysis still run).
func New(s *store.Store, transport DeepReviewTransport) *Pipeline {
	return &Pipeline{store: s, transport: transport}
}

// QuickCheck parses a session's event log, computes spec.md §4.6's metric
// table, applies the rating rules, and stores one QualityCheck(kind=quick).
func (p *Pipeline) QuickCheck(ctx context.Context, session *models.Session, eventLogPath string) error {
	events, err := eventlog.ReadEvents(eventLogPath)
	if err != nil {
		return fmt.Errorf("reading event log: %w", err)
	}

	metrics, toolNames := extractMetrics(events)
	applyRunnerSummary(&metrics, session.Metrics)

	critical, warnings := classify(metrics, toolNames, session.Status)
	rating := overallRating(len(critical), len(warnings))

	qc := &models.QualityCheck{
		SessionID:      session.ID,
		Kind:           models.QualityCheckKindQuick,
		Status:         models.QualityCheckStatusOK,
		OverallRating:  rating,
		Metrics:        metrics,
		CriticalIssues: critical,
		Warnings:       warnings,
	}
	return p.store.CreateQualityCheck(ctx, qc)
}

// extractMetrics computes the deterministic portion of QuickMetrics from
// the raw event stream (everything except the runner-summary-derived
// tokens/cost/duration, folded in separately since the event log doesn't
// carry them on every line).
func extractMetrics(events []eventlog.Event) (models.QuickMetrics, []string) {
	var m models.QuickMetrics
	var toolNames []string

	for _, e := range events {
		switch e.Kind {
		case eventlog.KindToolUse:
			m.TotalToolUses++
			toolNames = append(toolNames, e.ToolName)
			if isBrowserTool(e.ToolName) {
				m.PlaywrightCount++
				if isScreenshotTool(e.ToolName) {
					m.PlaywrightScreenshotCount++
				}
			}
		case eventlog.KindToolResult:
			if e.OK != nil && !*e.OK {
				m.ErrorCount++
			}
		}
	}

	if m.TotalToolUses > 0 {
		m.ErrorRate = float64(m.ErrorCount) / float64(m.TotalToolUses)
	}
	return m, toolNames
}

// applyRunnerSummary folds the token/cost/duration fields the Agent Runner
// already computed (and the orchestrator persisted on Session.Metrics)
// into the quick-check metrics, avoiding re-deriving them from the log.
func applyRunnerSummary(m *models.QuickMetrics, summary map[string]interface{}) {
	if summary == nil {
		return
	}
	if v, ok := summary["tokens_input"].(int); ok {
		m.TokensInput = v
	} else if v, ok := summary["tokens_input"].(float64); ok {
		m.TokensInput = int(v)
	}
	if v, ok := summary["tokens_output"].(int); ok {
		m.TokensOutput = v
	} else if v, ok := summary["tokens_output"].(float64); ok {
		m.TokensOutput = int(v)
	}
	if v, ok := summary["cost_usd"].(float64); ok {
		m.CostUSD = v
	}
	if v, ok := summary["duration_seconds"].(float64); ok {
		m.DurationSeconds = v
	}
}

func isBrowserTool(name string) bool {
	return hasAnyPrefix(name, "playwright", "browser_")
}

func isScreenshotTool(name string) bool {
	return hasAnyPrefix(name, "playwright_screenshot", "browser_screenshot")
}

func hasAnyPrefix(name string, prefixes ...string) bool {
	for _, p := range prefixes {
		if len(name) >= len(p) && name[:len(p)] == p {
			return true
		}
	}
	return false
}

// classify applies the critical/warning rule bar from spec.md §4.6.
func classify(m models.QuickMetrics, toolNames []string, status models.SessionStatus) (critical, warnings []string) {
	if status != models.SessionStatusCompleted {
		critical = append(critical, fmt.Sprintf("[CRITICAL] session ended abnormally: %s", status))
	}
	if m.ErrorRate > ErrorRateCriticalThreshold {
		critical = append(critical, fmt.Sprintf("[CRITICAL] tool error rate %.0f%% exceeds %.0f%%", m.ErrorRate*100, ErrorRateCriticalThreshold*100))
	} else if m.ErrorRate > ErrorRateWarningThreshold {
		warnings = append(warnings, fmt.Sprintf("tool error rate %.0f%% above %.0f%%", m.ErrorRate*100, ErrorRateWarningThreshold*100))
	}
	if m.PlaywrightCount == 0 && involvesUIWork(toolNames) {
		critical = append(critical, noBrowserVerificationMarker)
	}
	return critical, warnings
}

// overallRating derives a 1-10 score: starts at 10, loses 3 per critical
// issue and 1 per warning, floored at 1.
func overallRating(criticalCount, warningCount int) int {
	rating := 10 - 3*criticalCount - warningCount
	if rating < 1 {
		rating = 1
	}
	if rating > 10 {
		rating = 10
	}
	return rating
}
