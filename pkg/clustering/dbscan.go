// Package clustering implements deterministic density-based clustering
// (DBSCAN) over answer embeddings with cosine distance.
package clustering

import (
	"github.com/google/uuid"
)

const (
	labelUnvisited = 0
	labelNoise     = -1
)

// Params controls one clustering run.
type Params struct {
	// MinClusterSize is the smallest group the engine will emit; smaller
	// density-connected groups are demoted to noise.
	MinClusterSize int
	// MinSamples is the neighbourhood density needed for a core point.
	MinSamples int
	// Epsilon is the cosine-distance radius of a neighbourhood.
	Epsilon float64
}

// Point is one embedded answer entering the engine.
type Point struct {
	AnswerID uuid.UUID
	Vector   []float32
}

// Group is one output cluster. A single group with Noise=true collects every
// unassigned point.
type Group struct {
	MemberIDs []uuid.UUID
	Centroid  []float32
	Noise     bool
}

// Run clusters points with DBSCAN. The expansion order follows the input
// order, so identical input always yields identical membership. No cluster
// count is predetermined; points that reach no dense region are returned as
// one trailing noise group.
func Run(points []Point, p Params) []Group {
	if len(points) == 0 {
		return []Group{}
	}

	labels := make([]int, len(points))
	nextLabel := 0

	for i := range points {
		if labels[i] != labelUnvisited {
			continue
		}
		neighbors := regionQuery(points, i, p.Epsilon)
		if len(neighbors) < p.MinSamples {
			labels[i] = labelNoise
			continue
		}

		nextLabel++
		labels[i] = nextLabel
		expand(points, labels, neighbors, nextLabel, p)
	}

	return collect(points, labels, nextLabel, p.MinClusterSize)
}

// expand grows cluster `label` from a seed neighbourhood. The queue is
// processed front to back; appended neighbours keep input order, which keeps
// the whole run deterministic.
func expand(points []Point, labels []int, seeds []int, label int, p Params) {
	queue := append([]int(nil), seeds...)
	for qi := 0; qi < len(queue); qi++ {
		j := queue[qi]
		if labels[j] == labelNoise {
			// Border point: density-reachable but not core.
			labels[j] = label
			continue
		}
		if labels[j] != labelUnvisited {
			continue
		}
		labels[j] = label

		neighbors := regionQuery(points, j, p.Epsilon)
		if len(neighbors) >= p.MinSamples {
			queue = append(queue, neighbors...)
		}
	}
}

func regionQuery(points []Point, i int, epsilon float64) []int {
	var neighbors []int
	for j := range points {
		if j == i {
			continue
		}
		if CosineDistance(points[i].Vector, points[j].Vector) <= epsilon {
			neighbors = append(neighbors, j)
		}
	}
	return neighbors
}

func collect(points []Point, labels []int, maxLabel, minClusterSize int) []Group {
	byLabel := make(map[int][]int, maxLabel)
	for i, l := range labels {
		if l > 0 {
			byLabel[l] = append(byLabel[l], i)
		}
	}

	var groups []Group
	var noiseIdx []int
	for i, l := range labels {
		if l == labelNoise {
			noiseIdx = append(noiseIdx, i)
		}
	}

	// Emit in label order (first-seen order) for a stable result. Clusters
	// under MinClusterSize are demoted to noise rather than padded out.
	for l := 1; l <= maxLabel; l++ {
		idx := byLabel[l]
		if len(idx) == 0 {
			continue
		}
		if len(idx) < minClusterSize {
			noiseIdx = append(noiseIdx, idx...)
			continue
		}
		groups = append(groups, makeGroup(points, idx, false))
	}

	if len(noiseIdx) > 0 {
		groups = append(groups, makeGroup(points, noiseIdx, true))
	}
	if groups == nil {
		groups = []Group{}
	}
	return groups
}

func makeGroup(points []Point, idx []int, noise bool) Group {
	ids := make([]uuid.UUID, len(idx))
	vectors := make([][]float32, len(idx))
	for k, i := range idx {
		ids[k] = points[i].AnswerID
		vectors[k] = points[i].Vector
	}
	return Group{
		MemberIDs: ids,
		Centroid:  Centroid(vectors),
		Noise:     noise,
	}
}
