// Package dataset generates the point sets the clustering engine runs on.
package dataset

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/paulitab/paulalb-assignment-2/internal/clustering"
	"github.com/paulitab/paulalb-assignment-2/internal/geometry"
)

// Config bounds generated datasets
type Config struct {
	DefaultPoints int // Used when a request does not say how many points
	MaxPoints     int // Largest dataset a single request may ask for
}

// DefaultConfig returns the default generator configuration
func DefaultConfig() Config {
	return Config{
		DefaultPoints: 100,
		MaxPoints:     10000,
	}
}

// Generator samples points uniformly from the unit square [0,1)².
type Generator struct {
	config Config
	rng    *rand.Rand
}

// NewGenerator creates a generator. A nil rng is replaced by a time seeded one.
func NewGenerator(cfg Config, rng *rand.Rand) *Generator {
	if cfg.DefaultPoints <= 0 {
		cfg.DefaultPoints = 100
	}
	if cfg.MaxPoints <= 0 {
		cfg.MaxPoints = 10000
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{config: cfg, rng: rng}
}

// Config returns the generator configuration.
func (g *Generator) Config() Config {
	return g.config
}

// Generate returns n points. n of 0 means Config.DefaultPoints.
func (g *Generator) Generate(n int) ([]geometry.Point, error) {
	if n == 0 {
		n = g.config.DefaultPoints
	}
	if n < 1 || n > g.config.MaxPoints {
		return nil, clustering.NewClusterError("generate dataset", clustering.ErrInvalidParameter,
			fmt.Sprintf("num_points must be between 1 and %d, got %d", g.config.MaxPoints, n))
	}

	points := make([]geometry.Point, n)
	for i := range points {
		points[i] = geometry.Point{X: g.rng.Float64(), Y: g.rng.Float64()}
	}
	return points, nil
}
