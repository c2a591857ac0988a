package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulitab/paulalb-assignment-2/internal/session"
)

var (
	// ErrSessionNotFound is returned when no session is stored under a key
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyKey is returned when a session key is empty
	ErrEmptyKey = errors.New("session key cannot be empty")

	// ErrNilSession is returned when storing a nil session
	ErrNilSession = errors.New("session cannot be nil")
)

// Store keeps sessions under opaque identifiers.
type Store interface {
	// Get returns the session stored under id, or ErrSessionNotFound
	Get(ctx context.Context, id string) (*session.Session, error)

	// Put stores s under id, replacing any previous session and
	// refreshing its time to live
	Put(ctx context.Context, id string, s *session.Session) error

	// Delete removes the session stored under id
	Delete(ctx context.Context, id string) error

	// Health checks the health of the backing store
	Health(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}

// CheckPut validates the arguments shared by every Put implementation.
func CheckPut(id string, s *session.Session) error {
	if id == "" {
		return ErrEmptyKey
	}
	if s == nil {
		return fmt.Errorf("put %s: %w", id, ErrNilSession)
	}
	return nil
}

// IsNotFound checks if an error is a "session not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
