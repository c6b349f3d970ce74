package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dynamous-community/YokeFlow/pkg/models"
)

func TestFileName_DistinguishesSessionTypes(t *testing.T) {
	assert.Equal(t, "initializer_system_prompt.md", FileName(models.SessionTypeInitializer))
	assert.Equal(t, "coding_system_prompt.md", FileName(models.SessionTypeCoding))
	assert.Equal(t, "coding_system_prompt.md", FileName(models.SessionTypeReview))
}

func TestSystemPrompt_FallsBackToCompiledDefaultWhenCacheEmpty(t *testing.T) {
	b := NewBuilder(nil)

	got := b.SystemPrompt(models.SessionTypeInitializer, "")
	assert.Equal(t, defaultInitializerSystemPrompt, got)
}

func TestSystemPrompt_PrefersCachedActiveVersion(t *testing.T) {
	b := NewBuilder(nil)
	b.active[FileName(models.SessionTypeCoding)] = "custom coding instructions"

	got := b.SystemPrompt(models.SessionTypeCoding, "")
	assert.Equal(t, "custom coding instructions", got)
}

func TestSystemPrompt_AppendsSandboxNote(t *testing.T) {
	b := NewBuilder(nil)

	container := b.SystemPrompt(models.SessionTypeCoding, models.SandboxKindContainer)
	local := b.SystemPrompt(models.SessionTypeCoding, models.SandboxKindLocal)
	bare := b.SystemPrompt(models.SessionTypeCoding, "")

	assert.True(t, strings.HasSuffix(container, containerSandboxNote))
	assert.True(t, strings.HasSuffix(local, localSandboxNote))
	assert.Equal(t, defaultCodingSystemPrompt, bare)
	assert.NotEqual(t, container, local)
}
