package clustering

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// axisPoint builds a unit vector near the given axis, tilted by angle
// radians towards the next axis. Points tilted by small angles around the
// same axis form a dense region under cosine distance.
func axisPoint(dim, axis int, angle float64) []float32 {
	v := make([]float32, dim)
	v[axis] = float32(math.Cos(angle))
	v[(axis+1)%dim] = float32(math.Sin(angle))
	return v
}

func syntheticBatch(dim int, sizes []int, noise int) []Point {
	var points []Point
	for axis, n := range sizes {
		for k := 0; k < n; k++ {
			// Spread members within ~8 degrees of the axis.
			angle := 0.14 * float64(k) / float64(n)
			points = append(points, Point{
				AnswerID: uuid.New(),
				Vector:   axisPoint(dim, axis*2, angle),
			})
		}
	}
	for k := 0; k < noise; k++ {
		// Isolated points on distinct far axes: no dense neighbourhood.
		points = append(points, Point{
			AnswerID: uuid.New(),
			Vector:   axisPoint(dim, len(sizes)*2+k*2, 0),
		})
	}
	return points
}

func TestRunFindsDenseGroupsAndNoise(t *testing.T) {
	points := syntheticBatch(32, []int{20, 20, 15}, 5)
	require.Len(t, points, 60)

	groups := Run(points, Params{MinClusterSize: 5, MinSamples: 3, Epsilon: 0.2})

	var clusters, noiseGroups int
	var clustered, noisy int
	for _, g := range groups {
		if g.Noise {
			noiseGroups++
			noisy += len(g.MemberIDs)
		} else {
			clusters++
			clustered += len(g.MemberIDs)
		}
	}

	assert.Equal(t, 3, clusters)
	assert.Equal(t, 1, noiseGroups)
	assert.Equal(t, 55, clustered)
	assert.Equal(t, 5, noisy)
}

func TestRunIsDeterministic(t *testing.T) {
	points := syntheticBatch(32, []int{12, 9, 7}, 4)
	params := Params{MinClusterSize: 3, MinSamples: 2, Epsilon: 0.2}

	first := Run(points, params)
	second := Run(points, params)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Noise, second[i].Noise)
		assert.Equal(t, first[i].MemberIDs, second[i].MemberIDs)
		assert.Equal(t, first[i].Centroid, second[i].Centroid)
	}
}

func TestRunDemotesUndersizedClustersToNoise(t *testing.T) {
	// One dense pair only; MinClusterSize 5 means it must not be emitted as
	// a tiny cluster.
	points := syntheticBatch(16, []int{2}, 3)

	groups := Run(points, Params{MinClusterSize: 5, MinSamples: 1, Epsilon: 0.2})

	require.Len(t, groups, 1)
	assert.True(t, groups[0].Noise)
	assert.Len(t, groups[0].MemberIDs, 5)
}

func TestRunEmptyInput(t *testing.T) {
	groups := Run(nil, Params{MinClusterSize: 5, MinSamples: 3, Epsilon: 0.3})
	assert.Empty(t, groups)
}

func TestCosineDistance(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}

	assert.InDelta(t, 0, CosineDistance(a, a), 1e-6)
	assert.InDelta(t, 1, CosineDistance(a, b), 1e-6)
	assert.InDelta(t, 1, CosineDistance(a, nil), 1e-6)
}

func TestCentroidIsNormalized(t *testing.T) {
	c := Centroid([][]float32{{2, 0}, {0, 2}})
	require.Len(t, c, 2)

	var mag float64
	for _, x := range c {
		mag += float64(x) * float64(x)
	}
	assert.InDelta(t, 1, math.Sqrt(mag), 1e-6)
}
