package quality

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// deepReviewModel is used for the single-turn analysis call. Deep reviews
// don't carry a per-project model override in spec.md, so this is fixed
// rather than threaded through from the coding session's model.
const deepReviewModel = "claude-sonnet-4-5"

// deepReviewResponse is the structured shape the LLM is asked to return
// (spec.md §4.6).
type deepReviewResponse struct {
	OverallRating      int      `json:"overall_rating"`
	CriticalIssues     []string `json:"critical_issues"`
	Warnings           []string `json:"warnings"`
	ReviewText         string   `json:"review_text"`
	PromptImprovements []string `json:"prompt_improvements"`
}

// shouldTriggerDeepReview implements the four trigger rules from spec.md
// §4.6. lastDeepReviewedNumber is 0 when no deep review has ever run for
// the project.
func shouldTriggerDeepReview(sessionNumber, lastDeepReviewedNumber, quickRating int) bool {
	if sessionNumber < DeepReviewMinSession {
		return quickRating < MinRatingForNoReview
	}
	if sessionNumber%DeepReviewInterval == 0 {
		return true
	}
	if lastDeepReviewedNumber == 0 {
		return true
	}
	if sessionNumber-lastDeepReviewedNumber >= DeepReviewInterval {
		return true
	}
	return quickRating < MinRatingForNoReview
}

// MaybeDeepReview evaluates the trigger policy and, if it fires, runs the
// deep review and waits for it. The orchestrator invokes it on a detached
// goroutine, so the coding loop is not held up (spec.md §4.6). Errors are
// logged and swallowed — a failed deep review must not affect session state.
func (p *Pipeline) MaybeDeepReview(ctx context.Context, session *models.Session) {
	if p.transport == nil {
		return
	}

	quick, err := p.store.GetQualityCheck(ctx, session.ID, models.QualityCheckKindQuick)
	if err != nil {
		slog.Warn("quality: reading quick check for deep-review trigger failed", "session_id", session.ID, "error", err)
		return
	}

	lastNumber, err := p.lastDeepReviewedNumber(ctx, session.ProjectID)
	if err != nil {
		slog.Warn("quality: reading last deep review number failed", "project_id", session.ProjectID, "error", err)
		return
	}

	if !shouldTriggerDeepReview(session.Number, lastNumber, quick.OverallRating) {
		return
	}

	if err := p.runDeepReview(ctx, session); err != nil {
		slog.Warn("quality: deep review failed", "session_id", session.ID, "error", err)
	}
}

// lastDeepReviewedNumber finds the highest session number with a deep
// review already recorded, within the project, or 0 if none exists.
func (p *Pipeline) lastDeepReviewedNumber(ctx context.Context, projectID string) (int, error) {
	sessions, err := p.store.ListSessions(ctx, projectID)
	if err != nil {
		return 0, err
	}
	highest := 0
	for _, s := range sessions {
		if s.Number <= highest {
			continue
		}
		if _, err := p.store.GetQualityCheck(ctx, s.ID, models.QualityCheckKindDeep); err == nil {
			highest = s.Number
		}
	}
	return highest, nil
}

// runDeepReview builds the review prompt from the session's number and
// status only (the event log's contents are not included in the prompt),
// submits it for a single-turn completion, and parses the defensive JSON
// response. A parse failure stores a QualityCheck(kind=deep, status=failed)
// rather than propagating (spec.md §4.6, §7 Corrupt kind).
func (p *Pipeline) runDeepReview(ctx context.Context, session *models.Session) error {
	prompt := buildDeepReviewPrompt(session)

	raw, err := p.transport.Analyze(ctx, deepReviewModel, prompt)
	if err != nil {
		return fmt.Errorf("calling analysis transport: %w", err)
	}

	resp, parseErr := parseDeepReviewResponse(raw)
	if parseErr != nil {
		return p.store.CreateQualityCheck(ctx, &models.QualityCheck{
			SessionID: session.ID,
			Kind:      models.QualityCheckKindDeep,
			Status:    models.QualityCheckStatusFailed,
			ReviewText: fmt.Sprintf("could not parse deep review response: %v", parseErr),
		})
	}

	return p.store.CreateQualityCheck(ctx, &models.QualityCheck{
		SessionID:       session.ID,
		Kind:            models.QualityCheckKindDeep,
		Status:          models.QualityCheckStatusOK,
		OverallRating:   resp.OverallRating,
		CriticalIssues:  resp.CriticalIssues,
		Warnings:        resp.Warnings,
		ReviewText:      resp.ReviewText,
		Recommendations: resp.PromptImprovements,
	})
}

func buildDeepReviewPrompt(session *models.Session) string {
	var b strings.Builder
	b.WriteString("Review coding session #")
	fmt.Fprintf(&b, "%d (status %s).\n", session.Number, session.Status)
	b.WriteString("Respond with a single JSON object: ")
	b.WriteString(`{"overall_rating": 1-10, "critical_issues": [...], "warnings": [...], "review_text": "...", "prompt_improvements": [...]}`)
	b.WriteString("\nNo prose outside the JSON object.")
	return b.String()
}

// parseDeepReviewResponse strips a markdown code fence if the model wrapped
// its JSON in one, then unmarshals defensively.
func parseDeepReviewResponse(raw string) (*deepReviewResponse, error) {
	text := stripCodeFence(raw)
	var resp deepReviewResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("decoding deep review JSON: %w", err)
	}
	return &resp, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
