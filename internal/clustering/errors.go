package clustering

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned when a request carries a bad argument,
	// such as a wrong manual centroid count or a k outside 1..len(dataset).
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidState is returned when an operation runs before the data it
	// needs exists, such as stepping without centroids.
	ErrInvalidState = errors.New("invalid state")
)

// ClusterError represents a clustering failure with context
type ClusterError struct {
	Op      string // Operation that failed
	Err     error  // Underlying error
	Context string // Additional context
}

func (e *ClusterError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Context)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ClusterError) Unwrap() error {
	return e.Err
}

// NewClusterError creates a new ClusterError
func NewClusterError(op string, err error, context string) error {
	return &ClusterError{
		Op:      op,
		Err:     err,
		Context: context,
	}
}

// Message returns the human readable part of err: the context of the
// outermost ClusterError when there is one, otherwise err.Error().
func Message(err error) string {
	var ce *ClusterError
	if errors.As(err, &ce) && ce.Context != "" {
		return ce.Context
	}
	return err.Error()
}

// IsInvalidParameter checks if an error is an "invalid parameter" error
func IsInvalidParameter(err error) bool {
	return errors.Is(err, ErrInvalidParameter)
}

// IsInvalidState checks if an error is an "invalid state" error
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}
