package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/dynamous-community/YokeFlow/pkg/apierrors"
	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// ApplyProposal implements the "apply proposal" flow completing the spec's
// Open Question decision to make this a full operation rather than a status
// flip: read the proposal's target prompt, apply its before/after diff,
// write the result as a new PromptVersion, activate it, and record the
// version against the proposal.
//
// The proposal must already be in "accepted" status; store.MarkProposalApplied
// enforces that transactionally against a concurrent re-apply.
func (a *Analyzer) ApplyProposal(ctx context.Context, proposalID, appliedBy string) (*models.PromptVersion, error) {
	proposal, err := a.store.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != models.ProposalStatusAccepted {
		return nil, apierrors.StateViolation("proposal must be accepted before it can be applied")
	}

	current, err := a.store.GetActivePromptVersion(ctx, proposal.TargetFile)
	var baseContent string
	if err == nil {
		baseContent = current.Content
	} else if !apierrors.Is(err, apierrors.KindNotFound) {
		return nil, fmt.Errorf("reading active prompt version: %w", err)
	}

	newContent, err := applyProposalDiff(baseContent, proposal)
	if err != nil {
		return nil, err
	}

	version := &models.PromptVersion{
		FileName: proposal.TargetFile,
		Label:    fmt.Sprintf("proposal-%s", shortID(proposal.ID)),
		Content:  newContent,
		Summary:  proposal.Rationale,
	}
	if err := a.store.CreatePromptVersion(ctx, version); err != nil {
		return nil, fmt.Errorf("creating prompt version: %w", err)
	}
	if err := a.store.ActivatePromptVersion(ctx, version.ID); err != nil {
		return nil, fmt.Errorf("activating prompt version: %w", err)
	}
	if err := a.store.MarkProposalApplied(ctx, proposal.ID, appliedBy, version.ID); err != nil {
		return nil, err
	}
	return version, nil
}

// applyProposalDiff produces the new prompt content for a proposal. When
// OriginalText is set, it is replaced by ProposedText (the LLM-elaborated
// modification path); when empty, ProposedText is appended as a new
// section under SectionName (the non-LLM addition path, and any LLM
// elaboration that came back as a pure addition).
func applyProposalDiff(base string, p *models.Proposal) (string, error) {
	if p.ChangeKind == models.ProposalChangeDeletion {
		if p.OriginalText == "" || !strings.Contains(base, p.OriginalText) {
			return "", apierrors.StateViolation("proposal's original_text was not found in the current prompt")
		}
		return strings.Replace(base, p.OriginalText, "", 1), nil
	}

	if p.OriginalText != "" {
		if !strings.Contains(base, p.OriginalText) {
			return "", apierrors.StateViolation("proposal's original_text was not found in the current prompt")
		}
		return strings.Replace(base, p.OriginalText, p.ProposedText, 1), nil
	}

	var b strings.Builder
	b.WriteString(base)
	if base != "" && !strings.HasSuffix(base, "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n## %s\n\n%s\n", p.SectionName, p.ProposedText)
	return b.String(), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
