package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

func TestApplyProposalDiff_ModificationReplacesOriginalText(t *testing.T) {
	base := "## Testing\n\nWrite tests when convenient.\n"
	p := &models.Proposal{
		ChangeKind:   models.ProposalChangeModification,
		OriginalText: "Write tests when convenient.",
		ProposedText: "Write a test for every new task before marking it complete.",
	}
	out, err := applyProposalDiff(base, p)
	require.NoError(t, err)
	assert.Contains(t, out, "Write a test for every new task before marking it complete.")
	assert.NotContains(t, out, "Write tests when convenient.")
}

func TestApplyProposalDiff_ModificationMissingOriginalTextErrors(t *testing.T) {
	p := &models.Proposal{
		ChangeKind:   models.ProposalChangeModification,
		OriginalText: "this text is not present anywhere",
		ProposedText: "replacement",
	}
	_, err := applyProposalDiff("## Testing\n\nexisting content\n", p)
	assert.True(t, apierrors.Is(err, apierrors.KindStateViolation))
}

func TestApplyProposalDiff_AdditionAppendsNewSection(t *testing.T) {
	p := &models.Proposal{
		ChangeKind:   models.ProposalChangeAddition,
		SectionName:  "verification_requirements",
		ProposedText: "Take a screenshot after every UI change.",
	}
	out, err := applyProposalDiff("## Existing\n\ncontent\n", p)
	require.NoError(t, err)
	assert.Contains(t, out, "## verification_requirements")
	assert.Contains(t, out, "Take a screenshot after every UI change.")
	assert.Contains(t, out, "## Existing")
}

func TestApplyProposalDiff_DeletionRemovesOriginalText(t *testing.T) {
	p := &models.Proposal{
		ChangeKind:   models.ProposalChangeDeletion,
		OriginalText: "Run tests occasionally.\n",
	}
	out, err := applyProposalDiff("## Testing\n\nRun tests occasionally.\nOther content.\n", p)
	require.NoError(t, err)
	assert.NotContains(t, out, "Run tests occasionally.")
	assert.Contains(t, out, "Other content.")
}

func TestShortID_TruncatesLongIDs(t *testing.T) {
	assert.Equal(t, "abcdefgh", shortID("abcdefgh-1234-5678"))
	assert.Equal(t, "short", shortID("short"))
}
