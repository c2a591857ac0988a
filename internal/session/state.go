package session

import (
	"fmt"

	"github.com/paulitab/paulalb-assignment-2/internal/clustering"
	"github.com/paulitab/paulalb-assignment-2/internal/geometry"
)

// State is the lifecycle position of a Session.
type State int

const (
	StateIdle State = iota
	StateDatasetReady
	StateStepping
	StateConverged
)

var stateNames = map[State]string{
	StateIdle:         "idle",
	StateDatasetReady: "dataset_ready",
	StateStepping:     "stepping",
	StateConverged:    "converged",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	name, ok := stateNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown state %d", int(s))
	}
	return []byte(name), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", string(text))
}

// Status is reported by Step.
type Status string

const (
	StatusStepping  Status = "stepping"
	StatusConverged Status = "converged"
)

// Params are the initialization arguments remembered between calls so a
// step on a session without centroids can seed it again.
type Params struct {
	K        int                 `json:"k"`
	Strategy clustering.Strategy `json:"strategy"`
	Manual   []geometry.Point    `json:"manual_centroids,omitempty"`
}

func (p Params) clone() Params {
	if p.Manual != nil {
		p.Manual = geometry.Clone(p.Manual)
	}
	return p
}

// InitResult is returned by Initialize.
type InitResult struct {
	Centroids []geometry.Point
	Partition clustering.Partition
}

// StepResult is returned by Step. Partition was computed against the
// centroids in effect when the step began, so while stepping it lags
// Centroids by one iteration.
type StepResult struct {
	Status    Status
	Centroids []geometry.Point
	Partition clustering.Partition
	Iteration int
}
