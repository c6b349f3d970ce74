package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopThemesByUniqueSessions_RanksDescendingAndCapsToBudget(t *testing.T) {
	byTheme := map[theme]*themeStats{
		themeTesting:    {sessionIDs: setOf("a", "b", "c"), mentions: 3},
		themeDocker:     {sessionIDs: setOf("a"), mentions: 2},
		themeDocumentation: {sessionIDs: setOf("a", "b"), mentions: 2},
		themeGeneral:    {sessionIDs: setOf("a"), mentions: 1}, // below min frequency, excluded
	}
	top := topThemesByUniqueSessions(byTheme, 2)
	assert.Equal(t, []theme{themeTesting, themeDocumentation}, top)
}

func TestStripElaborationFence_StripsJSONFence(t *testing.T) {
	raw := "```json\n{\"a\":1}\n```"
	assert.Equal(t, `{"a":1}`, stripElaborationFence(raw))
}

func TestStripElaborationFence_PassesThroughPlainJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripElaborationFence(`{"a":1}`))
}

func setOf(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}
