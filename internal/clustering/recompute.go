package clustering

import (
	"github.com/paulitab/paulalb-assignment-2/internal/geometry"
)

// Recompute returns the mean of every non-empty cluster, in cluster order.
//
// Empty clusters are dropped, so the result can be shorter than the
// partition and the effective k shrinks for the rest of the run. Callers
// that depend on a stable k must not rely on this function to keep it.
func Recompute(partition Partition) []geometry.Point {
	centroids := make([]geometry.Point, 0, len(partition))
	for _, cluster := range partition {
		if mean, ok := geometry.Mean(cluster); ok {
			centroids = append(centroids, mean)
		}
	}
	return centroids
}
