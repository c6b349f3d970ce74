package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dynamous-community/YokeFlow/pkg/agentrunner"
	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

func TestStopSession_NoActiveSession(t *testing.T) {
	o := New(Deps{})
	err := o.StopSession("project-1")
	assert.Error(t, err)
	assert.True(t, apierrors.Is(err, apierrors.KindStateViolation))
}

func TestStopSession_CancelsActiveSession(t *testing.T) {
	o := New(Deps{})
	ps := o.state("project-1")

	cancelled := false
	ps.mu.Lock()
	ps.cancel = func() { cancelled = true }
	ps.mu.Unlock()

	err := o.StopSession("project-1")
	assert.NoError(t, err)
	assert.True(t, cancelled)
}

func TestSetStopAfterCurrent_TwiceEqualsOnce(t *testing.T) {
	o := New(Deps{})
	o.SetStopAfterCurrent("p")
	o.SetStopAfterCurrent("p")

	ps := o.state("p")
	ps.mu.Lock()
	defer ps.mu.Unlock()
	assert.True(t, ps.stopAfterCurrent)
}

func TestClearStopAfterCurrent(t *testing.T) {
	o := New(Deps{})
	o.SetStopAfterCurrent("p")
	o.ClearStopAfterCurrent("p")

	ps := o.state("p")
	ps.mu.Lock()
	defer ps.mu.Unlock()
	assert.False(t, ps.stopAfterCurrent)
}

func TestEffectiveMaxIterations(t *testing.T) {
	ten := 10
	zero := 0
	assert.Equal(t, 5, effectiveMaxIterations(nil, 5))
	assert.Equal(t, 5, effectiveMaxIterations(&zero, 5))
	assert.Equal(t, 10, effectiveMaxIterations(&ten, 5))
}

func TestMapTerminalStatus(t *testing.T) {
	assert.Equal(t, models.SessionStatusCompleted, mapTerminalStatus(agentrunner.StatusCompleted))
	assert.Equal(t, models.SessionStatusInterrupted, mapTerminalStatus(agentrunner.StatusInterrupted))
	assert.Equal(t, models.SessionStatusError, mapTerminalStatus(agentrunner.StatusError))
}
