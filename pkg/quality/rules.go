// Package quality implements the Quality Pipeline from spec.md §4.6: a
// deterministic quick check run after every coding/review session, a
// background LLM deep review gated by a trigger policy, and a
// post-initialization test-coverage analysis. Grounded in the teacher's
// rule-based severity classification (pkg/services/quality, which scores
// completed alert investigations against fixed thresholds) but re-targeted
// at tool-use event streams instead of alert timelines.
package quality

import "strings"

// Quick-check rule thresholds (spec.md §4.6). The spec leaves the exact
// bars as an implementation detail (Open Question in spec.md §9); they are
// kept here as named constants rather than promoted into pkg/config since
// nothing in the spec suggests they vary per project.
const (
	// ErrorRateCriticalThreshold marks a session critical when its tool
	// error rate exceeds this fraction.
	ErrorRateCriticalThreshold = 0.30
	// ErrorRateWarningThreshold marks a session with a warning (but not
	// critical) above this fraction.
	ErrorRateWarningThreshold = 0.15

	// MinRatingForNoReview is the quick-check rating floor below which a
	// deep review is triggered regardless of session number (rule 4).
	MinRatingForNoReview = 7

	// DeepReviewInterval is the session-count gap that forces a deep
	// review even when the modulo rule (rule 1) hasn't fired (rule 3).
	DeepReviewInterval = 5

	// DeepReviewMinSession is the earliest session number rules 1-3 can
	// fire on; rule 4 (low rating) applies at any session number.
	DeepReviewMinSession = 5

	// noBrowserVerificationMarker is the critical-issue string the quick
	// check attaches when a UI session recorded zero browser verifications.
	// Kept as a shared marker so BrowserCompliance (summary.go) can count
	// occurrences without re-deriving the rule.
	noBrowserVerificationMarker = "[CRITICAL] no browser verifications in a session that touched UI work"
)

// uiToolKeywords flags tool names that indicate the session involved UI
// work, for the "zero browser verifications in a UI session" critical
// rule.
var uiToolKeywords = []string{"ui", "frontend", "page", "component", "form", "button"}

func involvesUIWork(toolNames []string) bool {
	for _, name := range toolNames {
		lower := strings.ToLower(name)
		for _, kw := range uiToolKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
