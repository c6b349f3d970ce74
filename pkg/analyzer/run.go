package analyzer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// defaultTargetFile is the prompt file proposals are written against.
// Deep reviews only run against coding sessions (the orchestrator never
// triggers one for an initializer session), so recommendations accumulate
// against the prompt that drives the coding loop.
const defaultTargetFile = "coding_system_prompt.md"

const themeProposalSeverity = 1.0

// themeMinFrequency is the minimum mention count a theme needs before it
// earns a proposal (spec.md §4.7: "frequency ≥ 2").
const themeMinFrequency = 2

const estimatedImpactCap = 3.0

// Run executes one full analyzer pass: eligibility screening, deep-review
// aggregation into the theme taxonomy, proposal emission (LLM-elaborated
// for the top themes, non-LLM fallback otherwise), threshold-based
// secondary issues, and analysis completion (spec.md §4.7).
func (a *Analyzer) Run(ctx context.Context, triggerSource string, elig Eligibility) (*models.Analysis, error) {
	projectIDs, since, until, err := a.eligibleProjects(ctx, elig)
	if err != nil {
		return nil, err
	}

	analysis := &models.Analysis{
		ProjectIDs:    projectIDs,
		SandboxKind:   string(elig.SandboxKind),
		TriggerSource: triggerSource,
		WindowStart:   since,
		WindowEnd:     until,
	}
	if err := a.store.CreateAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("creating analysis: %w", err)
	}

	if len(projectIDs) == 0 {
		if err := a.store.CompleteAnalysis(ctx, analysis.ID, 0, map[string]interface{}{}, 0); err != nil {
			return nil, err
		}
		return a.store.GetAnalysis(ctx, analysis.ID)
	}

	byTheme, stats, err := a.aggregate(ctx, projectIDs, since, until)
	if err != nil {
		if failErr := a.store.FailAnalysis(ctx, analysis.ID, err.Error()); failErr != nil {
			return nil, failErr
		}
		return a.store.GetAnalysis(ctx, analysis.ID)
	}

	patterns := map[string]interface{}{}
	var impact float64

	elaborated := a.elaborateTop(ctx, byTheme)

	for t, s := range byTheme {
		if s.mentions < themeMinFrequency {
			continue
		}
		proposal := a.buildThemeProposal(analysis.ID, t, s, elaborated[t])
		if err := a.store.CreateProposal(ctx, proposal); err != nil {
			if failErr := a.store.FailAnalysis(ctx, analysis.ID, err.Error()); failErr != nil {
				return nil, failErr
			}
			return a.store.GetAnalysis(ctx, analysis.ID)
		}
		patterns[string(t)] = map[string]interface{}{
			"unique_sessions": s.uniqueSessions(),
			"mentions":        s.mentions,
			"avg_quality":     s.avgQuality(),
		}
		impact += float64(s.mentions) / float64(maxInt(stats.total, 1)) * themeProposalSeverity
	}

	var thresholdPatterns []map[string]interface{}
	for _, issue := range thresholdIssues(stats) {
		proposal := &models.Proposal{
			AnalysisID:   analysis.ID,
			TargetFile:   defaultTargetFile,
			SectionName:  issue.section,
			ChangeKind:   issue.changeKind,
			ProposedText: issue.text,
			Rationale:    issue.rationale,
			Evidence:     []string{fmt.Sprintf("frequency=%.3f", issue.frequency)},
			Confidence:   confidence(stats.total, 0, false),
		}
		if err := a.store.CreateProposal(ctx, proposal); err != nil {
			if failErr := a.store.FailAnalysis(ctx, analysis.ID, err.Error()); failErr != nil {
				return nil, failErr
			}
			return a.store.GetAnalysis(ctx, analysis.ID)
		}
		thresholdPatterns = append(thresholdPatterns, map[string]interface{}{
			"section":   issue.section,
			"frequency": issue.frequency,
		})
		impact += issue.frequency * issue.severity
	}
	if len(thresholdPatterns) > 0 {
		patterns["threshold_issues"] = thresholdPatterns
	}

	if impact > estimatedImpactCap {
		impact = estimatedImpactCap
	}

	if err := a.store.CompleteAnalysis(ctx, analysis.ID, stats.total, patterns, impact); err != nil {
		return nil, fmt.Errorf("completing analysis: %w", err)
	}
	return a.store.GetAnalysis(ctx, analysis.ID)
}

// aggregate reads every in-window deep review and quick check for the
// eligible projects, bucketing recommendations by theme and folding quick
// metrics into sessionStats for the threshold pass.
func (a *Analyzer) aggregate(ctx context.Context, projectIDs []string, since, until time.Time) (map[theme]*themeStats, sessionStats, error) {
	byTheme := make(map[theme]*themeStats)

	deepReviews, err := a.store.ListDeepReviewsForProjects(ctx, projectIDs, since, until)
	if err != nil {
		return nil, sessionStats{}, fmt.Errorf("listing deep reviews: %w", err)
	}
	for _, qc := range deepReviews {
		for _, rec := range qc.Recommendations {
			for _, t := range classifyThemes(rec) {
				if byTheme[t] == nil {
					byTheme[t] = newThemeStats()
				}
				byTheme[t].record(qc.SessionID, qc.OverallRating, rec)
			}
		}
	}

	var stats sessionStats
	for _, projectID := range projectIDs {
		sessions, err := a.store.ListSessions(ctx, projectID)
		if err != nil {
			return nil, sessionStats{}, fmt.Errorf("listing sessions for project %s: %w", projectID, err)
		}
		for _, s := range sessions {
			if s.Type != models.SessionTypeCoding || s.Status != models.SessionStatusCompleted {
				continue
			}
			if s.EndedAt == nil || s.EndedAt.Before(since) || s.EndedAt.After(until) {
				continue
			}
			qc, err := a.store.GetQualityCheck(ctx, s.ID, models.QualityCheckKindQuick)
			if err != nil {
				continue
			}
			stats.record(qc)
		}
	}

	return byTheme, stats, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// elaborateTop runs the bounded LLM elaboration pass over the highest
// unique-session themes, skipping entirely when no transport is
// configured.
func (a *Analyzer) elaborateTop(ctx context.Context, byTheme map[theme]*themeStats) map[theme]*llmElaboration {
	out := make(map[theme]*llmElaboration)
	if a.transport == nil {
		return out
	}

	// A project that has never had its coding prompt customized has no
	// active version row yet; elaborate against an empty baseline rather
	// than skipping the pass.
	var promptContent string
	if v, err := a.store.GetActivePromptVersion(ctx, defaultTargetFile); err == nil {
		promptContent = v.Content
	}

	for _, t := range topThemesByUniqueSessions(byTheme, a.llmBudget) {
		elab, err := a.elaborate(ctx, t, byTheme[t], promptContent)
		if err != nil || elab == nil {
			continue
		}
		out[t] = elab
	}
	return out
}

// buildThemeProposal turns one theme's accumulated stats into a Proposal,
// preferring the LLM elaboration when one was produced and falling back to
// the fixed non-LLM form otherwise (spec.md §4.7).
func (a *Analyzer) buildThemeProposal(analysisID string, t theme, s *themeStats, elab *llmElaboration) *models.Proposal {
	if elab != nil {
		section := elab.SectionName
		if section == "" {
			section = sectionForTheme[t]
		}
		return &models.Proposal{
			AnalysisID:   analysisID,
			TargetFile:   defaultTargetFile,
			SectionName:  section,
			ChangeKind:   changeKindFromString(elab.ChangeType),
			OriginalText: elab.OriginalText,
			ProposedText: elab.ProposedText,
			Rationale:    elab.Rationale,
			Evidence:     s.recommendations,
			Confidence:   confidence(s.uniqueSessions(), s.avgQuality(), true),
		}
	}

	return &models.Proposal{
		AnalysisID:   analysisID,
		TargetFile:   defaultTargetFile,
		SectionName:  sectionForTheme[t],
		ChangeKind:   models.ProposalChangeModification,
		ProposedText: shortestAsBullets(s.recommendations, 3),
		Rationale:    fmt.Sprintf("Recommendation appeared %d times across %d sessions in this window.", s.mentions, s.uniqueSessions()),
		Evidence:     s.recommendations,
		Confidence:   confidence(s.uniqueSessions(), s.avgQuality(), false),
	}
}

func changeKindFromString(s string) models.ProposalChangeKind {
	switch models.ProposalChangeKind(s) {
	case models.ProposalChangeAddition, models.ProposalChangeDeletion:
		return models.ProposalChangeKind(s)
	default:
		return models.ProposalChangeModification
	}
}

// shortestAsBullets renders the n shortest strings (by byte length) as a
// markdown bullet list, shortest first.
func shortestAsBullets(items []string, n int) string {
	cp := append([]string(nil), items...)
	sort.Slice(cp, func(i, j int) bool { return len(cp[i]) < len(cp[j]) })
	if len(cp) > n {
		cp = cp[:n]
	}
	var b []byte
	for _, item := range cp {
		b = append(b, "- "...)
		b = append(b, item...)
		b = append(b, '\n')
	}
	return string(b)
}
