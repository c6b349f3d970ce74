package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamous-community/YokeFlow/pkg/models"
)

func TestSessionStats_RecordAccumulates(t *testing.T) {
	var s sessionStats
	s.record(&models.QualityCheck{Metrics: models.QuickMetrics{PlaywrightCount: 0, ErrorRate: 0.2}, OverallRating: 5})
	s.record(&models.QualityCheck{Metrics: models.QuickMetrics{PlaywrightCount: 1, ErrorRate: 0.0}, OverallRating: 9})

	assert.Equal(t, 2, s.total)
	assert.Equal(t, 1, s.missingBrowserVerified)
	assert.Equal(t, 1, s.highErrorRate)
	assert.Equal(t, 1, s.lowQuality)
}

func TestThresholdIssues_EmptyStatsYieldsNoIssues(t *testing.T) {
	assert.Empty(t, thresholdIssues(sessionStats{}))
}

func TestThresholdIssues_FiresAllThreeAboveThreshold(t *testing.T) {
	stats := sessionStats{total: 10, missingBrowserVerified: 5, highErrorRate: 5, lowQuality: 5}
	issues := thresholdIssues(stats)
	require.Len(t, issues, 3)

	sections := map[string]bool{}
	for _, issue := range issues {
		sections[issue.section] = true
	}
	assert.True(t, sections["verification_requirements"])
	assert.True(t, sections["error_handling_guidance"])
	assert.True(t, sections["general_guidance"])
}

func TestThresholdIssues_BelowThresholdFiresNone(t *testing.T) {
	stats := sessionStats{total: 1000, missingBrowserVerified: 1, highErrorRate: 1, lowQuality: 1}
	assert.Empty(t, thresholdIssues(stats))
}
