package brand

const (
	weightKnownMatch = 0.6
	weightValidated  = 0.7
	weightContext    = 0.1
	maxConfidence    = 1.0
)

// Confidence scores a brand candidate from its evidence. A known-list match
// contributes 0.6, external validation 0.7 and a context hit 0.1, capped
// at 1.0 so a fully corroborated mention maxes out instead of overflowing.
func Confidence(knownMatch, validated, contextHit bool) float64 {
	score := 0.0
	if knownMatch {
		score += weightKnownMatch
	}
	if validated {
		score += weightValidated
	}
	if contextHit {
		score += weightContext
	}
	if score > maxConfidence {
		score = maxConfidence
	}
	return score
}
