package clustering

import (
	"github.com/paulitab/paulalb-assignment-2/internal/geometry"
)

// Cluster holds the dataset points assigned to one centroid slot.
type Cluster []geometry.Point

// Partition is index aligned with the centroid set it was computed from:
// partition[i] holds the points nearest centroids[i].
type Partition []Cluster

// Clone returns a deep copy of p.
func (p Partition) Clone() Partition {
	if p == nil {
		return nil
	}
	out := make(Partition, len(p))
	for i, c := range p {
		out[i] = Cluster(geometry.Clone(c))
	}
	return out
}

// Size returns the number of points across every cluster.
func (p Partition) Size() int {
	n := 0
	for _, c := range p {
		n += len(c)
	}
	return n
}

// Assign partitions dataset by nearest centroid. A point equidistant from
// several centroids goes to the lowest index. Clusters may be empty but are
// never nil.
func Assign(dataset []geometry.Point, centroids []geometry.Point) (Partition, error) {
	if len(centroids) == 0 {
		return nil, NewClusterError("assign", ErrInvalidState, "no centroids")
	}

	partition := make(Partition, len(centroids))
	for i := range partition {
		partition[i] = Cluster{}
	}

	for _, p := range dataset {
		idx := Nearest(p, centroids)
		partition[idx] = append(partition[idx], p)
	}

	return partition, nil
}

// Nearest returns the index of the centroid closest to p, the first one on
// ties. centroids must be non-empty.
func Nearest(p geometry.Point, centroids []geometry.Point) int {
	best := 0
	bestDist := geometry.Distance(p, centroids[0])
	for i := 1; i < len(centroids); i++ {
		if d := geometry.Distance(p, centroids[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
