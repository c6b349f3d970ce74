package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveMaxIterations_NilOrZeroOverrideFallsBackToDefault(t *testing.T) {
	zero := 0
	ten := 10

	assert.Equal(t, 5, resolveMaxIterations(nil, 5))
	assert.Equal(t, 5, resolveMaxIterations(&zero, 5))
	assert.Equal(t, 10, resolveMaxIterations(&ten, 5))
}

func TestFirstNonEmpty_ReturnsFirstSetValue(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
	assert.Equal(t, "a", firstNonEmpty("a", "b"))
}
