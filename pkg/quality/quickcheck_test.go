package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dynamous-community/YokeFlow/pkg/eventlog"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

func ok(v bool) *bool { return &v }

func TestExtractMetrics_CountsToolUsesAndErrors(t *testing.T) {
	events := []eventlog.Event{
		{Kind: eventlog.KindToolUse, ToolName: "run_command"},
		{Kind: eventlog.KindToolResult, OK: ok(true)},
		{Kind: eventlog.KindToolUse, ToolName: "playwright_click"},
		{Kind: eventlog.KindToolResult, OK: ok(false)},
		{Kind: eventlog.KindToolUse, ToolName: "playwright_screenshot"},
		{Kind: eventlog.KindToolResult, OK: ok(true)},
	}

	m, names := extractMetrics(events)
	assert.Equal(t, 3, m.TotalToolUses)
	assert.Equal(t, 1, m.ErrorCount)
	assert.InDelta(t, 1.0/3.0, m.ErrorRate, 0.0001)
	assert.Equal(t, 2, m.PlaywrightCount)
	assert.Equal(t, 1, m.PlaywrightScreenshotCount)
	assert.Len(t, names, 3)
}

func TestExtractMetrics_ZeroToolUsesHasZeroErrorRate(t *testing.T) {
	m, _ := extractMetrics(nil)
	assert.Equal(t, 0, m.TotalToolUses)
	assert.Equal(t, 0.0, m.ErrorRate)
}

func TestClassify_AbnormalTerminationIsCritical(t *testing.T) {
	critical, warnings := classify(models.QuickMetrics{}, nil, models.SessionStatusError)
	assert.Len(t, critical, 1)
	assert.Empty(t, warnings)
}

func TestClassify_HighErrorRateIsCritical(t *testing.T) {
	m := models.QuickMetrics{TotalToolUses: 10, ErrorCount: 5, ErrorRate: 0.5}
	critical, warnings := classify(m, nil, models.SessionStatusCompleted)
	assert.Len(t, critical, 1)
	assert.Empty(t, warnings)
}

func TestClassify_ModerateErrorRateIsWarningOnly(t *testing.T) {
	m := models.QuickMetrics{TotalToolUses: 10, ErrorCount: 2, ErrorRate: 0.2}
	critical, warnings := classify(m, nil, models.SessionStatusCompleted)
	assert.Empty(t, critical)
	assert.Len(t, warnings, 1)
}

func TestClassify_NoBrowserVerificationInUISessionIsCritical(t *testing.T) {
	m := models.QuickMetrics{PlaywrightCount: 0}
	critical, _ := classify(m, []string{"update_ui_component"}, models.SessionStatusCompleted)
	assert.Len(t, critical, 1)
}

func TestClassify_CleanSessionHasNoIssues(t *testing.T) {
	m := models.QuickMetrics{TotalToolUses: 10, ErrorCount: 0, ErrorRate: 0, PlaywrightCount: 1}
	critical, warnings := classify(m, []string{"ui_button_click"}, models.SessionStatusCompleted)
	assert.Empty(t, critical)
	assert.Empty(t, warnings)
}

func TestOverallRating_DecreasesWithIssues(t *testing.T) {
	assert.Equal(t, 10, overallRating(0, 0))
	assert.Equal(t, 9, overallRating(0, 1))
	assert.Equal(t, 7, overallRating(1, 0))
	assert.Equal(t, 1, overallRating(5, 0))
}

func TestApplyRunnerSummary_FoldsTokensAndCost(t *testing.T) {
	var m models.QuickMetrics
	applyRunnerSummary(&m, map[string]interface{}{
		"tokens_input":     1200.0,
		"tokens_output":    300.0,
		"cost_usd":         0.42,
		"duration_seconds": 12.5,
	})
	assert.Equal(t, 1200, m.TokensInput)
	assert.Equal(t, 300, m.TokensOutput)
	assert.InDelta(t, 0.42, m.CostUSD, 0.0001)
	assert.InDelta(t, 12.5, m.DurationSeconds, 0.0001)
}

func TestApplyRunnerSummary_NilSummaryIsNoOp(t *testing.T) {
	var m models.QuickMetrics
	applyRunnerSummary(&m, nil)
	assert.Equal(t, models.QuickMetrics{}, m)
}
