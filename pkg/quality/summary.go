package quality

import (
	"context"

	"github.com/dynamous-community/YokeFlow/pkg/models"
	"github.com/dynamous-community/YokeFlow/pkg/store"
)

// ProjectSummary aggregates a project's quality checks for the per-project
// summary endpoint (spec.md §6 request surface).
type ProjectSummary struct {
	SessionsReviewed   int     `json:"sessions_reviewed"`
	DeepReviewCount    int     `json:"deep_review_count"`
	AverageRating      float64 `json:"average_rating"`
	CriticalIssueCount int     `json:"critical_issue_count"`
	WarningCount       int     `json:"warning_count"`
}

// BrowserVerificationCompliance reports how many quick-checked sessions
// avoided the zero-browser-verification critical issue. Every quick-checked
// session counts, whether or not it touched UI work.
type BrowserVerificationCompliance struct {
	SessionsChecked     int     `json:"sessions_checked"`
	SessionsNonCompliant int    `json:"sessions_non_compliant"`
	CompliancePercent   float64 `json:"compliance_percent"`
}

// IssueSummary lists the critical issues and warnings raised across a
// project's sessions, most recent first.
type IssueSummary struct {
	SessionID string `json:"session_id"`
	Kind      string `json:"kind"` // "critical" or "warning"
	Message   string `json:"message"`
}

// Summarize computes ProjectSummary from every quality check belonging to
// the project's sessions.
func Summarize(ctx context.Context, s *store.Store, projectID string) (ProjectSummary, error) {
	checks, err := projectChecks(ctx, s, projectID)
	if err != nil {
		return ProjectSummary{}, err
	}

	var summary ProjectSummary
	var ratingTotal int
	for _, qc := range checks {
		summary.SessionsReviewed++
		if qc.Kind == models.QualityCheckKindDeep {
			summary.DeepReviewCount++
		}
		ratingTotal += qc.OverallRating
		summary.CriticalIssueCount += len(qc.CriticalIssues)
		summary.WarningCount += len(qc.Warnings)
	}
	if summary.SessionsReviewed > 0 {
		summary.AverageRating = float64(ratingTotal) / float64(summary.SessionsReviewed)
	}
	return summary, nil
}

// BrowserCompliance reports the fraction of checked sessions that avoided
// the zero-browser-verification critical rule.
func BrowserCompliance(ctx context.Context, s *store.Store, projectID string) (BrowserVerificationCompliance, error) {
	checks, err := projectChecks(ctx, s, projectID)
	if err != nil {
		return BrowserVerificationCompliance{}, err
	}

	var result BrowserVerificationCompliance
	for _, qc := range checks {
		if qc.Kind != models.QualityCheckKindQuick {
			continue
		}
		result.SessionsChecked++
		for _, issue := range qc.CriticalIssues {
			if issue == noBrowserVerificationMarker {
				result.SessionsNonCompliant++
				break
			}
		}
	}
	if result.SessionsChecked > 0 {
		compliant := result.SessionsChecked - result.SessionsNonCompliant
		result.CompliancePercent = 100 * float64(compliant) / float64(result.SessionsChecked)
	}
	return result, nil
}

// Issues flattens every critical issue and warning across a project's
// sessions, ordered by session number descending.
func Issues(ctx context.Context, s *store.Store, projectID string) ([]IssueSummary, error) {
	sessions, err := s.ListSessions(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var out []IssueSummary
	// ListSessions already returns newest first.
	for _, sess := range sessions {
		checks, err := s.ListQualityChecksBySession(ctx, sess.ID)
		if err != nil {
			return nil, err
		}
		for _, qc := range checks {
			for _, c := range qc.CriticalIssues {
				out = append(out, IssueSummary{SessionID: sess.ID, Kind: "critical", Message: c})
			}
			for _, w := range qc.Warnings {
				out = append(out, IssueSummary{SessionID: sess.ID, Kind: "warning", Message: w})
			}
		}
	}
	return out, nil
}

func projectChecks(ctx context.Context, s *store.Store, projectID string) ([]*models.QualityCheck, error) {
	sessions, err := s.ListSessions(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var checks []*models.QualityCheck
	for _, sess := range sessions {
		sessChecks, err := s.ListQualityChecksBySession(ctx, sess.ID)
		if err != nil {
			return nil, err
		}
		checks = append(checks, sessChecks...)
	}
	return checks, nil
}
