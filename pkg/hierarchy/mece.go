package hierarchy

import (
	"github.com/google/uuid"

	"codeframe-be/internal/entity"
)

// MECEScore reports how mutually-exclusive and collectively-exhaustive the
// clustering is. Coverage is the fraction of answers claimed by a non-noise
// cluster; Overlap is the fraction of claimed answers appearing in more
// than one cluster. Both are stored on the job for the analyst to judge,
// not enforced.
type MECEScore struct {
	Coverage float64
	Overlap  float64
}

// ScoreMECE computes the score over the job's clusters. totalAnswers is the
// size of the eligible answer set the clustering ran on.
func ScoreMECE(clusters []*entity.Cluster, totalAnswers int) MECEScore {
	if totalAnswers <= 0 {
		return MECEScore{}
	}

	seen := make(map[uuid.UUID]int)
	for _, cluster := range clusters {
		if cluster.Noise {
			continue
		}
		for _, id := range cluster.MemberAnswerIds {
			seen[id]++
		}
	}

	claimed := len(seen)
	overlapping := 0
	for _, n := range seen {
		if n > 1 {
			overlapping++
		}
	}

	score := MECEScore{Coverage: float64(claimed) / float64(totalAnswers)}
	if claimed > 0 {
		score.Overlap = float64(overlapping) / float64(claimed)
	}
	return score
}
