package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidence_TiersByUniqueSessionCount(t *testing.T) {
	assert.Equal(t, 3, confidence(1, 0, false))
	assert.Equal(t, 3, confidence(2, 0, false))
	assert.Equal(t, 5, confidence(3, 0, false))
	assert.Equal(t, 7, confidence(5, 0, false))
	assert.Equal(t, 9, confidence(6, 0, false))
}

func TestConfidence_LowAvgQualityPenalized(t *testing.T) {
	assert.Equal(t, 8, confidence(6, 2, false))
}

func TestConfidence_HighAvgQualityBoosted(t *testing.T) {
	assert.Equal(t, 10, confidence(6, 9, false))
}

func TestConfidence_LLMEnhancedAddsOne(t *testing.T) {
	assert.Equal(t, 4, confidence(1, 0, true))
}

func TestConfidence_ClampedToRange(t *testing.T) {
	assert.Equal(t, 2, confidence(1, 2, false))
	assert.Equal(t, 10, confidence(100, 9, true))
}
