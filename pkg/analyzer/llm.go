package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// llmElaboration is the strict JSON shape an elaboration call must return,
// or null meaning "already addressed" (spec.md §4.7).
type llmElaboration struct {
	SectionName  string `json:"section_name"`
	ChangeType   string `json:"change_type"`
	OriginalText string `json:"original_text"`
	ProposedText string `json:"proposed_text"`
	Rationale    string `json:"rationale"`
}

// topThemesByUniqueSessions returns up to budget theme keys, ranked by
// unique-session count descending, for the bounded LLM elaboration pass.
func topThemesByUniqueSessions(byTheme map[theme]*themeStats, budget int) []theme {
	type ranked struct {
		t theme
		n int
	}
	var candidates []ranked
	for t, stats := range byTheme {
		if stats.mentions >= 2 {
			candidates = append(candidates, ranked{t, stats.uniqueSessions()})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].n != candidates[j].n {
			return candidates[i].n > candidates[j].n
		}
		return candidates[i].t < candidates[j].t
	})
	if len(candidates) > budget {
		candidates = candidates[:budget]
	}
	out := make([]theme, len(candidates))
	for i, c := range candidates {
		out[i] = c.t
	}
	return out
}

// elaborate asks the transport for a precise before/after diff against the
// current prompt content for a theme. Returns nil, nil on a "null" response
// (already addressed) rather than an error, so the caller falls back to the
// non-LLM proposal either way.
func (a *Analyzer) elaborate(ctx context.Context, t theme, stats *themeStats, promptContent string) (*llmElaboration, error) {
	if a.transport == nil {
		return nil, nil
	}
	prompt := buildElaborationPrompt(t, stats, promptContent)
	raw, err := a.transport.Analyze(ctx, a.model, prompt)
	if err != nil {
		return nil, fmt.Errorf("calling analysis transport: %w", err)
	}

	text := strings.TrimSpace(raw)
	if text == "null" || text == "" {
		return nil, nil
	}
	text = stripElaborationFence(text)

	var out llmElaboration
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, fmt.Errorf("decoding elaboration JSON: %w", err)
	}
	return &out, nil
}

func buildElaborationPrompt(t theme, stats *themeStats, promptContent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recommendations recorded across %d coding sessions, theme %q:\n", stats.uniqueSessions(), t)
	for _, r := range stats.recommendations {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteString("\n")
	}
	b.WriteString("\nCurrent prompt file content:\n---\n")
	b.WriteString(promptContent)
	b.WriteString("\n---\n")
	b.WriteString(`Respond with a single JSON object {"section_name","change_type","original_text","proposed_text","rationale"} describing a precise edit, or the literal JSON null if the prompt already addresses this.`)
	return b.String()
}

func stripElaborationFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
