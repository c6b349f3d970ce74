package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/dynamous-community/YokeFlow/pkg/models"
)

// Eligibility bounds which projects a run considers (spec.md §4.7).
type Eligibility struct {
	MinSessions int
	WindowDays  int
	SandboxKind models.SandboxKind // empty matches any
}

// DefaultEligibility mirrors spec.md §4.7's stated defaults.
func DefaultEligibility() Eligibility {
	return Eligibility{MinSessions: 5, WindowDays: 7}
}

// eligibleProjects returns the IDs of projects that have at least
// MinSessions completed coding sessions ended within the trailing window,
// along with the window bounds used to select them.
func (a *Analyzer) eligibleProjects(ctx context.Context, e Eligibility) ([]string, time.Time, time.Time, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -e.WindowDays)

	projects, err := a.store.ListProjects(ctx, models.ProjectFilters{})
	if err != nil {
		return nil, since, now, fmt.Errorf("listing projects: %w", err)
	}

	var ids []string
	for _, project := range projects {
		if e.SandboxKind != "" && project.Settings.SandboxKind != e.SandboxKind {
			continue
		}
		sessions, err := a.store.ListSessions(ctx, project.ID)
		if err != nil {
			return nil, since, now, fmt.Errorf("listing sessions for project %s: %w", project.ID, err)
		}
		count := 0
		for _, s := range sessions {
			if s.Type != models.SessionTypeCoding || s.Status != models.SessionStatusCompleted {
				continue
			}
			if s.EndedAt == nil || s.EndedAt.Before(since) {
				continue
			}
			count++
		}
		if count >= e.MinSessions {
			ids = append(ids, project.ID)
		}
	}
	return ids, since, now, nil
}
