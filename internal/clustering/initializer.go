package clustering

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/paulitab/paulalb-assignment-2/internal/geometry"
)

// Initializer produces the starting centroids for a dataset.
// Implementations never mutate dataset.
type Initializer interface {
	Initialize(dataset []geometry.Point, k int, rng *rand.Rand) ([]geometry.Point, error)
	Strategy() Strategy
}

// NewInitializer returns the Initializer for strategy. manual is only read
// by StrategyManual and is copied.
func NewInitializer(strategy Strategy, manual []geometry.Point) (Initializer, error) {
	switch strategy {
	case StrategyManual:
		return manualInit{centroids: geometry.Clone(manual)}, nil
	case StrategyRandom:
		return randomInit{}, nil
	case StrategyKMeansPlusPlus:
		return plusPlusInit{}, nil
	case StrategyFarthestFirst:
		return farthestFirstInit{}, nil
	default:
		return nil, NewClusterError("new initializer", ErrInvalidParameter,
			fmt.Sprintf("unknown initialization method %s", strategy))
	}
}

// Initialize is shorthand for NewInitializer followed by Initialize.
func Initialize(dataset []geometry.Point, k int, strategy Strategy, manual []geometry.Point, rng *rand.Rand) ([]geometry.Point, error) {
	in, err := NewInitializer(strategy, manual)
	if err != nil {
		return nil, err
	}
	return in.Initialize(dataset, k, rng)
}

func checkDataset(dataset []geometry.Point, k int) error {
	if len(dataset) == 0 {
		return NewClusterError("initialize", ErrInvalidParameter, "empty dataset")
	}
	if k < 1 || k > len(dataset) {
		return NewClusterError("initialize", ErrInvalidParameter,
			fmt.Sprintf("k must be between 1 and %d, got %d", len(dataset), k))
	}
	return nil
}

func orDefault(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rng
}

// manualInit returns caller supplied centroids verbatim.
type manualInit struct {
	centroids []geometry.Point
}

func (m manualInit) Strategy() Strategy { return StrategyManual }

func (m manualInit) Initialize(dataset []geometry.Point, k int, _ *rand.Rand) ([]geometry.Point, error) {
	if len(dataset) == 0 {
		return nil, NewClusterError("initialize", ErrInvalidParameter, "empty dataset")
	}
	if k < 1 || len(m.centroids) != k {
		return nil, NewClusterError("initialize", ErrInvalidParameter,
			fmt.Sprintf("incorrect centroid count: please select exactly %d centroids, got %d", k, len(m.centroids)))
	}
	return geometry.Clone(m.centroids), nil
}

// randomInit draws k distinct dataset points without replacement.
type randomInit struct{}

func (randomInit) Strategy() Strategy { return StrategyRandom }

func (randomInit) Initialize(dataset []geometry.Point, k int, rng *rand.Rand) ([]geometry.Point, error) {
	if err := checkDataset(dataset, k); err != nil {
		return nil, err
	}
	rng = orDefault(rng)

	perm := rng.Perm(len(dataset))
	centroids := make([]geometry.Point, k)
	for i := 0; i < k; i++ {
		centroids[i] = dataset[perm[i]]
	}
	return centroids, nil
}

// plusPlusInit is k-means++ seeding weighted by plain distance to the
// nearest chosen centroid, not squared distance.
type plusPlusInit struct{}

func (plusPlusInit) Strategy() Strategy { return StrategyKMeansPlusPlus }

func (plusPlusInit) Initialize(dataset []geometry.Point, k int, rng *rand.Rand) ([]geometry.Point, error) {
	if err := checkDataset(dataset, k); err != nil {
		return nil, err
	}
	rng = orDefault(rng)

	centroids := make([]geometry.Point, 0, k)
	centroids = append(centroids, dataset[rng.Intn(len(dataset))])
	nearest := newNearestDistances(dataset, centroids[0])

	for len(centroids) < k {
		var total float64
		for _, d := range nearest {
			total += d
		}

		var idx int
		if total == 0 {
			// Every point sits on a centroid; no weight to sample by.
			idx = rng.Intn(len(dataset))
		} else {
			idx = weightedIndex(nearest, rng.Float64()*total)
		}

		centroids = append(centroids, dataset[idx])
		updateNearestDistances(nearest, dataset, dataset[idx])
	}

	return centroids, nil
}

// weightedIndex returns the first index whose cumulative weight exceeds target.
func weightedIndex(weights []float64, target float64) int {
	var cum float64
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		last = i
		if target < cum {
			return i
		}
	}
	// Rounding can leave target at the very top of the range.
	return last
}

// farthestFirstInit greedily picks the point farthest from its nearest
// chosen centroid. Ties go to the earliest point in dataset order.
type farthestFirstInit struct{}

func (farthestFirstInit) Strategy() Strategy { return StrategyFarthestFirst }

func (farthestFirstInit) Initialize(dataset []geometry.Point, k int, rng *rand.Rand) ([]geometry.Point, error) {
	if err := checkDataset(dataset, k); err != nil {
		return nil, err
	}
	rng = orDefault(rng)

	centroids := make([]geometry.Point, 0, k)
	centroids = append(centroids, dataset[rng.Intn(len(dataset))])
	nearest := newNearestDistances(dataset, centroids[0])

	for len(centroids) < k {
		best, bestDist := 0, math.Inf(-1)
		for i, d := range nearest {
			if d > bestDist {
				best, bestDist = i, d
			}
		}

		centroids = append(centroids, dataset[best])
		updateNearestDistances(nearest, dataset, dataset[best])
	}

	return centroids, nil
}

func newNearestDistances(dataset []geometry.Point, first geometry.Point) []float64 {
	nearest := make([]float64, len(dataset))
	for i, p := range dataset {
		nearest[i] = geometry.Distance(p, first)
	}
	return nearest
}

func updateNearestDistances(nearest []float64, dataset []geometry.Point, added geometry.Point) {
	for i, p := range dataset {
		if d := geometry.Distance(p, added); d < nearest[i] {
			nearest[i] = d
		}
	}
}
