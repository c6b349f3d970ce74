// Package analyzer implements the cross-project Prompt-Improvement Analyzer
// (spec.md §4.7): it mines deep-review recommendations across recently
// active projects, buckets them into a fixed theme taxonomy, and emits
// proposed edits against the prompt files driving future sessions.
//
// Grounded on the teacher's pkg/agent/prompt package, which owns the
// equivalent "read recorded behavior, propose a prompt edit" concern for a
// single agent turn; this package generalizes that to a scheduled,
// cross-project batch job.
package analyzer

import (
	"context"

	"github.com/dynamous-community/YokeFlow/pkg/store"
)

// Transport is the narrow analysis-mode capability the analyzer needs: a
// single-turn, tool-free completion. Any agentrunner.LLMTransport satisfies
// this structurally.
type Transport interface {
	Analyze(ctx context.Context, model, prompt string) (string, error)
}

// Analyzer runs eligibility screening, theme aggregation, proposal
// emission, and proposal application. Prompt file content lives in the
// store's prompt_versions table (pkg/store/promptversions.go) rather than
// on disk, so the analyzer reads and writes prompt content through the
// same *store.Store it uses for everything else.
type Analyzer struct {
	store     *store.Store
	transport Transport
	model     string

	// llmBudget caps how many themes per run get an LLM elaboration call
	// (spec.md §4.7: "bounded Claude-call budget — default 3").
	llmBudget int
}

// Config configures a New Analyzer.
type Config struct {
	Model     string
	LLMBudget int // 0 uses the spec default of 3
}

// New builds an Analyzer. A nil transport disables LLM elaboration; every
// theme proposal then falls back to the non-LLM form.
func New(s *store.Store, transport Transport, cfg Config) *Analyzer {
	budget := cfg.LLMBudget
	if budget <= 0 {
		budget = 3
	}
	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-5"
	}
	return &Analyzer{store: s, transport: transport, model: model, llmBudget: budget}
}

// themeStats accumulates the aggregation step of spec.md §4.7 for one theme.
type themeStats struct {
	sessionIDs      map[string]struct{}
	mentions        int
	qualitySum      int
	qualityCount    int
	recommendations []string
}

func newThemeStats() *themeStats {
	return &themeStats{sessionIDs: make(map[string]struct{})}
}

func (t *themeStats) record(sessionID string, rating int, recommendation string) {
	t.sessionIDs[sessionID] = struct{}{}
	t.mentions++
	if rating > 0 {
		t.qualitySum += rating
		t.qualityCount++
	}
	t.recommendations = append(t.recommendations, recommendation)
}

func (t *themeStats) uniqueSessions() int {
	return len(t.sessionIDs)
}

func (t *themeStats) avgQuality() float64 {
	if t.qualityCount == 0 {
		return 0
	}
	return float64(t.qualitySum) / float64(t.qualityCount)
}
