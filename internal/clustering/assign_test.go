package clustering

import (
	"math/rand"
	"testing"

	"github.com/paulitab/paulalb-assignment-2/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssign(t *testing.T) {
	dataset := []geometry.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 10, Y: 0}, {X: 10, Y: 1}}
	centroids := []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}

	partition, err := Assign(dataset, centroids)
	require.NoError(t, err)
	assert.Equal(t, Partition{
		{{X: 0, Y: 0}, {X: 0, Y: 1}},
		{{X: 10, Y: 0}, {X: 10, Y: 1}},
	}, partition)
}

func TestAssignEmptyClusterIsNotNil(t *testing.T) {
	dataset := []geometry.Point{{X: 0, Y: 0}, {X: 1, Y: 0}}
	centroids := []geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 100}}

	partition, err := Assign(dataset, centroids)
	require.NoError(t, err)
	require.Len(t, partition, 2)
	assert.NotNil(t, partition[1])
	assert.Empty(t, partition[1])
}

func TestAssignTiesGoToLowestIndex(t *testing.T) {
	dataset := []geometry.Point{{X: 0, Y: 0}}
	centroids := []geometry.Point{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}}

	partition, err := Assign(dataset, centroids)
	require.NoError(t, err)
	assert.Len(t, partition[0], 1)
	assert.Empty(t, partition[1])
	assert.Empty(t, partition[2])
}

func TestAssignNoCentroids(t *testing.T) {
	_, err := Assign([]geometry.Point{{X: 1, Y: 1}}, nil)
	require.Error(t, err)
	assert.True(t, IsInvalidState(err))
	assert.Equal(t, "no centroids", Message(err))
}

func TestAssignProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	dataset := make([]geometry.Point, 200)
	for i := range dataset {
		dataset[i] = geometry.Point{X: rng.Float64(), Y: rng.Float64()}
	}
	centroids, err := Initialize(dataset, 6, StrategyRandom, nil, rng)
	require.NoError(t, err)

	partition, err := Assign(dataset, centroids)
	require.NoError(t, err)
	require.Len(t, partition, len(centroids))

	// Union of clusters equals the dataset as a multiset.
	var union []geometry.Point
	for _, c := range partition {
		union = append(union, c...)
	}
	assert.ElementsMatch(t, dataset, union)
	assert.Equal(t, len(dataset), partition.Size())

	// No other centroid is strictly closer, and none earlier is as close.
	for idx, cluster := range partition {
		for _, p := range cluster {
			own := geometry.Distance(p, centroids[idx])
			for j, c := range centroids {
				d := geometry.Distance(p, c)
				assert.GreaterOrEqual(t, d, own)
				if j < idx {
					assert.Greater(t, d, own)
				}
			}
		}
	}
}

func TestPartitionClone(t *testing.T) {
	p := Partition{{{X: 1, Y: 2}}, {}}
	c := p.Clone()
	c[0][0].X = 9
	assert.Equal(t, 1.0, p[0][0].X)
	assert.Nil(t, Partition(nil).Clone())
}
