package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldTriggerDeepReview_ModuloRule(t *testing.T) {
	assert.True(t, shouldTriggerDeepReview(10, 5, 9))
	assert.True(t, shouldTriggerDeepReview(15, 10, 9))
}

func TestShouldTriggerDeepReview_NeverReviewedYet(t *testing.T) {
	assert.True(t, shouldTriggerDeepReview(6, 0, 9))
}

func TestShouldTriggerDeepReview_GapRule(t *testing.T) {
	assert.True(t, shouldTriggerDeepReview(11, 6, 9))
	assert.False(t, shouldTriggerDeepReview(9, 6, 9))
}

func TestShouldTriggerDeepReview_LowRatingForcesReview(t *testing.T) {
	assert.True(t, shouldTriggerDeepReview(7, 4, 6))
}

func TestShouldTriggerDeepReview_BelowMinSessionRespectsRatingOnly(t *testing.T) {
	assert.False(t, shouldTriggerDeepReview(3, 0, 9))
	assert.True(t, shouldTriggerDeepReview(3, 0, 5))
}

func TestShouldTriggerDeepReview_NoTriggerWhenHealthy(t *testing.T) {
	assert.False(t, shouldTriggerDeepReview(8, 6, 9))
}

func TestParseDeepReviewResponse_PlainJSON(t *testing.T) {
	resp, err := parseDeepReviewResponse(`{"overall_rating": 8, "critical_issues": [], "warnings": ["slow"], "review_text": "fine", "prompt_improvements": ["be terser"]}`)
	require.NoError(t, err)
	assert.Equal(t, 8, resp.OverallRating)
	assert.Equal(t, []string{"slow"}, resp.Warnings)
	assert.Equal(t, []string{"be terser"}, resp.PromptImprovements)
}

func TestParseDeepReviewResponse_StripsCodeFence(t *testing.T) {
	raw := "```json\n{\"overall_rating\": 5, \"review_text\": \"ok\"}\n```"
	resp, err := parseDeepReviewResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.OverallRating)
}

func TestParseDeepReviewResponse_InvalidJSONErrors(t *testing.T) {
	_, err := parseDeepReviewResponse("not json at all")
	assert.Error(t, err)
}
