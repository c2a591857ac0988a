// Package session sequences the k-means phases as discrete steps. A Session
// owns one dataset, its centroids, the current partition and the iteration
// counter. It does no locking: callers serialize access.
package session

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/paulitab/paulalb-assignment-2/internal/clustering"
	"github.com/paulitab/paulalb-assignment-2/internal/geometry"
)

// DefaultMaxIterations caps how many iterations a run may take before Step
// reports convergence regardless of centroid movement.
const DefaultMaxIterations = 10

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used by the random, k-means++ and
// farthest-first strategies.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithMaxIterations overrides DefaultMaxIterations. Values below 1 are ignored.
func WithMaxIterations(n int) Option {
	return func(s *Session) {
		if n >= 1 {
			s.maxIterations = n
		}
	}
}

// WithLogger sets the logger used for state transitions.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Session is the k-means state machine.
type Session struct {
	dataset       []geometry.Point
	centroids     []geometry.Point
	partition     clustering.Partition
	iteration     int
	maxIterations int
	state         State
	last          *Params

	rng    *rand.Rand
	logger zerolog.Logger
}

// New creates an idle session.
func New(opts ...Option) *Session {
	s := &Session{
		maxIterations: DefaultMaxIterations,
		state:         StateIdle,
		logger:        log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// LoadDataset replaces the dataset and clears any clustering progress.
// Loading an empty dataset returns the session to StateIdle.
func (s *Session) LoadDataset(points []geometry.Point) {
	s.dataset = geometry.Clone(points)
	s.clear()
	if len(s.dataset) == 0 {
		s.state = StateIdle
	} else {
		s.state = StateDatasetReady
	}
	observeOp("load_dataset", nil)

	s.logger.Debug().
		Int("points", len(s.dataset)).
		Str("state", s.state.String()).
		Msg("Dataset loaded")
}

// Initialize chooses centroids with p.Strategy and assigns the dataset to
// them. The iteration counter becomes 1. On error the session is unchanged.
func (s *Session) Initialize(p Params) (InitResult, error) {
	res, err := s.initialize(p)
	observeOp("initialize", err)
	return res, err
}

func (s *Session) initialize(p Params) (InitResult, error) {
	if len(s.dataset) == 0 {
		return InitResult{}, clustering.NewClusterError("initialize", clustering.ErrInvalidState, "no dataset")
	}

	centroids, err := clustering.Initialize(s.dataset, p.K, p.Strategy, p.Manual, s.rng)
	if err != nil {
		return InitResult{}, err
	}
	partition, err := clustering.Assign(s.dataset, centroids)
	if err != nil {
		return InitResult{}, err
	}

	last := p.clone()
	s.centroids = centroids
	s.partition = partition
	s.iteration = 1
	s.state = StateStepping
	s.last = &last

	InitializationsTotal.WithLabelValues(p.Strategy.String()).Inc()
	s.logger.Debug().
		Str("strategy", p.Strategy.String()).
		Int("k", len(centroids)).
		Int("iteration", s.iteration).
		Msg("Centroids initialized")

	return InitResult{
		Centroids: geometry.Clone(s.centroids),
		Partition: s.partition.Clone(),
	}, nil
}

// Step advances the run by one iteration.
//
// Without centroids the session is seeded first, from fallback when given
// or else from the parameters of the last successful Initialize, and the
// result reports iteration 1.
//
// Otherwise the dataset is reassigned to the current centroids and new
// centroids are recomputed from that partition. When they equal the
// current ones exactly, or the iteration cap is reached, the session
// converges and the current centroids are returned untouched. Otherwise
// the new centroids replace the current ones, alongside the partition
// computed against the old ones.
func (s *Session) Step(fallback *Params) (StepResult, error) {
	timer := time.Now()
	res, err := s.step(fallback)
	StepDuration.Observe(time.Since(timer).Seconds())
	observeOp("step", err)
	return res, err
}

func (s *Session) step(fallback *Params) (StepResult, error) {
	if len(s.dataset) == 0 {
		return StepResult{}, clustering.NewClusterError("step", clustering.ErrInvalidState, "no dataset")
	}

	if len(s.centroids) == 0 {
		params := fallback
		if params == nil {
			params = s.last
		}
		if params == nil {
			return StepResult{}, clustering.NewClusterError("step", clustering.ErrInvalidState, "no centroids")
		}

		res, err := s.initialize(*params)
		if err != nil {
			return StepResult{}, err
		}
		return StepResult{
			Status:    StatusStepping,
			Centroids: res.Centroids,
			Partition: res.Partition,
			Iteration: s.iteration,
		}, nil
	}

	partition, err := clustering.Assign(s.dataset, s.centroids)
	if err != nil {
		return StepResult{}, err
	}
	next := clustering.Recompute(partition)
	s.partition = partition

	if geometry.Equal(next, s.centroids) || s.iteration >= s.maxIterations {
		if s.state != StateConverged {
			IterationsToConvergence.Observe(float64(s.iteration))
		}
		s.state = StateConverged

		s.logger.Debug().
			Int("iteration", s.iteration).
			Bool("capped", s.iteration >= s.maxIterations).
			Msg("Convergence reached")

		return s.stepResult(StatusConverged), nil
	}

	if dropped := len(s.centroids) - len(next); dropped > 0 {
		CentroidsDropped.Add(float64(dropped))
		s.logger.Warn().
			Int("dropped", dropped).
			Int("k", len(next)).
			Msg("Empty clusters dropped their centroids")
	}

	s.centroids = next
	s.iteration++
	s.state = StateStepping

	s.logger.Debug().
		Int("iteration", s.iteration).
		Msg("Step complete")

	return s.stepResult(StatusStepping), nil
}

func (s *Session) stepResult(status Status) StepResult {
	return StepResult{
		Status:    status,
		Centroids: geometry.Clone(s.centroids),
		Partition: s.partition.Clone(),
		Iteration: s.iteration,
	}
}

// Reset clears centroids, partition and iteration but keeps the dataset,
// which is returned.
func (s *Session) Reset() ([]geometry.Point, error) {
	if len(s.dataset) == 0 {
		err := clustering.NewClusterError("reset", clustering.ErrInvalidState, "no dataset")
		observeOp("reset", err)
		return nil, err
	}

	s.clear()
	s.state = StateDatasetReady
	observeOp("reset", nil)

	s.logger.Debug().Msg("State reset: centroids, clusters, and iteration cleared")
	return s.Dataset(), nil
}

func (s *Session) clear() {
	s.centroids = nil
	s.partition = nil
	s.iteration = 0
}

// Dataset returns a copy of the current dataset.
func (s *Session) Dataset() []geometry.Point { return geometry.Clone(s.dataset) }

// Centroids returns a copy of the current centroids.
func (s *Session) Centroids() []geometry.Point { return geometry.Clone(s.centroids) }

// Partition returns a copy of the most recently computed partition.
func (s *Session) Partition() clustering.Partition { return s.partition.Clone() }

func (s *Session) Iteration() int     { return s.iteration }
func (s *Session) MaxIterations() int { return s.maxIterations }
func (s *Session) State() State       { return s.state }

// LastParams returns the parameters of the last successful Initialize.
func (s *Session) LastParams() (Params, bool) {
	if s.last == nil {
		return Params{}, false
	}
	return s.last.clone(), true
}
