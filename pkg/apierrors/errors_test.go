package apierrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesWrappedKind(t *testing.T) {
	err := fmt.Errorf("loading project: %w", NotFound("project 42"))

	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindConflict))
}

func TestIs_FalseForUnclassifiedError(t *testing.T) {
	assert.False(t, Is(errors.New("boom"), KindExternal))
}

func TestKindOf_ReturnsEmptyForUnclassifiedError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
}

func TestKindOf_ReturnsKindForClassifiedError(t *testing.T) {
	assert.Equal(t, KindInterrupted, KindOf(Interrupted("session cancelled")))
}

func TestExternal_UnwrapsToCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := External("dialing llm service", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "external")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNew_HasNoWrappedCause(t *testing.T) {
	err := Validation("missing name")
	assert.Nil(t, err.Unwrap())
	assert.Equal(t, "validation: missing name", err.Error())
}
