package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamous-community/YokeFlow/pkg/models"
)

func TestToMetadataPatch_RoundTripsThroughJSON(t *testing.T) {
	analysis := models.CoverageAnalysis{
		TotalTasks:      10,
		TasksWithTests:  6,
		CoveragePercent: 60,
		PerEpic: []models.CoverageBreakdown{
			{EpicID: "e1", EpicName: "Auth", TotalTasks: 4, TasksWithTests: 1, CoveragePercent: 25, Warning: "over half of \"Auth\"'s tasks have no tests"},
		},
		Warnings: []string{"over half of \"Auth\"'s tasks have no tests"},
	}

	patch, err := toMetadataPatch(analysis)
	require.NoError(t, err)

	blob, ok := patch["coverage_analysis"]
	require.True(t, ok)
	m, ok := blob.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(10), m["total_tasks"])
	assert.Equal(t, float64(60), m["coverage_percent"])
}
