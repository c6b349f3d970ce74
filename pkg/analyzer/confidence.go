package analyzer

// confidence implements spec.md §4.7's scoring formula: a base score from
// unique-session count, adjusted for quality extremes and LLM elaboration,
// clamped to [1, 10].
func confidence(uniqueSessions int, avgQuality float64, llmEnhanced bool) int {
	var score int
	switch {
	case uniqueSessions <= 2:
		score = 3
	case uniqueSessions <= 3:
		score = 5
	case uniqueSessions <= 5:
		score = 7
	default:
		score = 9
	}

	switch {
	case avgQuality > 0 && avgQuality <= 3:
		score--
	case avgQuality >= 9:
		score++
	}

	if llmEnhanced {
		score++
	}

	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return score
}
