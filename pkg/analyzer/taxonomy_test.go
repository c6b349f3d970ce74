package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyThemes_MatchesKeyword(t *testing.T) {
	themes := classifyThemes("Take a Playwright screenshot after UI changes.")
	assert.Contains(t, themes, themeBrowserVerification)
}

func TestClassifyThemes_MultipleMatches(t *testing.T) {
	themes := classifyThemes("Commit more often and add unit test coverage.")
	assert.Contains(t, themes, themeGitCommits)
	assert.Contains(t, themes, themeTesting)
}

func TestClassifyThemes_NoMatchFallsBackToGeneral(t *testing.T) {
	themes := classifyThemes("Be more concise overall.")
	assert.Equal(t, []theme{themeGeneral}, themes)
}

func TestSectionForTheme_CoversEveryTaxonomyEntry(t *testing.T) {
	for th := range themeKeywords {
		_, ok := sectionForTheme[th]
		assert.True(t, ok, "missing section mapping for theme %q", th)
	}
	_, ok := sectionForTheme[themeGeneral]
	assert.True(t, ok, "missing section mapping for general theme")
}
