package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProjectProgress_AllEpicsComplete_RequiresAtLeastOneEpic(t *testing.T) {
	assert.False(t, ProjectProgress{}.AllEpicsComplete())
}

func TestProjectProgress_AllEpicsComplete_TrueWhenAllDone(t *testing.T) {
	p := ProjectProgress{TotalEpics: 3, CompletedEpics: 3}
	assert.True(t, p.AllEpicsComplete())
}

func TestProjectProgress_AllEpicsComplete_FalseWhenPartial(t *testing.T) {
	p := ProjectProgress{TotalEpics: 3, CompletedEpics: 2}
	assert.False(t, p.AllEpicsComplete())
}

func TestProjectProgress_AllTasksComplete_RequiresAtLeastOneTask(t *testing.T) {
	assert.False(t, ProjectProgress{}.AllTasksComplete())
}

func TestProjectProgress_AllTasksComplete_TrueWhenAllDone(t *testing.T) {
	p := ProjectProgress{TotalTasks: 5, CompletedTasks: 5}
	assert.True(t, p.AllTasksComplete())
}
