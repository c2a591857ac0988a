package geometry

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Point is a location in the plane. It marshals to and from a two element
// JSON array, [x, y].
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return floats.Distance([]float64{a.X, a.Y}, []float64{b.X, b.Y}, 2)
}

// Mean returns the coordinate-wise arithmetic mean of points.
// ok is false when points is empty.
func Mean(points []Point) (mean Point, ok bool) {
	if len(points) == 0 {
		return Point{}, false
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Y
	}

	return Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}, true
}

// Equal reports whether a and b hold exactly the same points in the same order.
func Equal(a, b []Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of points that never aliases the input.
func Clone(points []Point) []Point {
	out := make([]Point, len(points))
	copy(out, points)
	return out
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("point must be a [x, y] array: %w", err)
	}
	if len(coords) != 2 {
		return fmt.Errorf("point must have exactly 2 coordinates, got %d", len(coords))
	}
	p.X, p.Y = coords[0], coords[1]
	return nil
}
