package analyzer

import "github.com/dynamous-community/YokeFlow/pkg/models"

// Frequency thresholds for the secondary, threshold-based issues (spec.md
// §4.7). These complement the theme proposals built from deep-review
// recommendations; they fire off quick-check statistics instead.
const (
	missingBrowserVerificationThreshold = 0.005
	highToolErrorRateThreshold          = 0.15
	lowQualityFrequencyThreshold        = 0.10
)

// severityWeight scores how much a fired threshold issue should contribute
// to the analysis's estimated quality impact.
const (
	severityMissingBrowserVerification = 1.5
	severityHighToolErrorRate          = 1.2
	severityLowQualityFrequency        = 1.0
)

// sessionStats accumulates the quick-check statistics a single eligible
// session contributes to the threshold-based issue pass.
type sessionStats struct {
	total                  int
	missingBrowserVerified int
	highErrorRate          int
	lowQuality             int
}

func (s *sessionStats) record(qc *models.QualityCheck) {
	s.total++
	if qc.Metrics.PlaywrightCount == 0 {
		s.missingBrowserVerified++
	}
	if qc.Metrics.ErrorRate >= highToolErrorRateThreshold {
		s.highErrorRate++
	}
	if qc.OverallRating > 0 && qc.OverallRating < 7 {
		s.lowQuality++
	}
}

// thresholdIssue is one secondary proposal candidate before it is turned
// into a models.Proposal.
type thresholdIssue struct {
	section   string
	changeKind models.ProposalChangeKind
	text       string
	rationale  string
	frequency  float64
	severity   float64
}

// thresholdIssues evaluates the three fixed-threshold rules against
// aggregated quick-check statistics.
func thresholdIssues(stats sessionStats) []thresholdIssue {
	if stats.total == 0 {
		return nil
	}
	var out []thresholdIssue

	if freq := float64(stats.missingBrowserVerified) / float64(stats.total); freq > missingBrowserVerificationThreshold {
		out = append(out, thresholdIssue{
			section:    "verification_requirements",
			changeKind: models.ProposalChangeAddition,
			text:       "Require a Playwright screenshot after every UI-affecting change before marking the task complete.",
			rationale:  "Sessions are frequently completing without browser verification of UI work.",
			frequency:  freq,
			severity:   severityMissingBrowserVerification,
		})
	}
	if freq := float64(stats.highErrorRate) / float64(stats.total); freq > highToolErrorRateThreshold {
		out = append(out, thresholdIssue{
			section:    "error_handling_guidance",
			changeKind: models.ProposalChangeModification,
			text:       "Before retrying a failed command, inspect its stderr and adjust the approach rather than repeating it unchanged.",
			rationale:  "A large share of sessions show a high tool-error rate.",
			frequency:  freq,
			severity:   severityHighToolErrorRate,
		})
	}
	if freq := float64(stats.lowQuality) / float64(stats.total); freq > lowQualityFrequencyThreshold {
		out = append(out, thresholdIssue{
			section:    "general_guidance",
			changeKind: models.ProposalChangeModification,
			text:       "Re-read the task's acceptance criteria before reporting it complete.",
			rationale:  "Quick-check quality ratings fall below 7 in more than a tenth of sessions.",
			frequency:  freq,
			severity:   severityLowQualityFrequency,
		})
	}
	return out
}
