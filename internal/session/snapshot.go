package session

import (
	"fmt"

	"github.com/paulitab/paulalb-assignment-2/internal/clustering"
	"github.com/paulitab/paulalb-assignment-2/internal/geometry"
)

// Snapshot is the serializable form of a Session. The random source is not
// part of it.
type Snapshot struct {
	Dataset       []geometry.Point     `json:"dataset"`
	Centroids     []geometry.Point     `json:"centroids"`
	Partition     clustering.Partition `json:"partition"`
	Iteration     int                  `json:"iteration"`
	MaxIterations int                  `json:"max_iterations"`
	State         State                `json:"state"`
	LastParams    *Params              `json:"last_params,omitempty"`
}

// Snapshot captures a deep copy of the session state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Dataset:       s.Dataset(),
		Centroids:     s.Centroids(),
		Partition:     s.Partition(),
		Iteration:     s.iteration,
		MaxIterations: s.maxIterations,
		State:         s.state,
	}
	if s.last != nil {
		last := s.last.clone()
		snap.LastParams = &last
	}
	return snap
}

// Restore rebuilds a Session from snap. opts are applied first, then the
// snapshot's own max iterations when it carries one.
func Restore(snap Snapshot, opts ...Option) (*Session, error) {
	if (snap.Iteration == 0) != (len(snap.Centroids) == 0) {
		return nil, fmt.Errorf("corrupt snapshot: iteration %d with %d centroids",
			snap.Iteration, len(snap.Centroids))
	}
	if len(snap.Dataset) == 0 && snap.State != StateIdle {
		return nil, fmt.Errorf("corrupt snapshot: state %s without a dataset", snap.State)
	}

	s := New(opts...)
	if snap.MaxIterations >= 1 {
		s.maxIterations = snap.MaxIterations
	}
	s.dataset = geometry.Clone(snap.Dataset)
	s.centroids = geometry.Clone(snap.Centroids)
	s.partition = snap.Partition.Clone()
	s.iteration = snap.Iteration
	s.state = snap.State
	if snap.LastParams != nil {
		last := snap.LastParams.clone()
		s.last = &last
	}
	return s, nil
}
