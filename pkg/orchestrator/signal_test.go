package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalScope_ArmDisarmTracksProject(t *testing.T) {
	o := New(Deps{})
	scope := o.NewSignalScope()

	assert.Equal(t, "", scope.armed)

	scope.Arm("proj-1")
	assert.Equal(t, "proj-1", scope.armed)

	scope.Disarm()
	assert.Equal(t, "", scope.armed)
}
