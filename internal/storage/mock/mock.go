package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paulitab/paulalb-assignment-2/internal/session"
	"github.com/paulitab/paulalb-assignment-2/internal/storage"
)

// MockStore implements storage.Store for testing
type MockStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
	errors   map[string]error // Simulate specific errors for testing
	latency  time.Duration    // Simulate network latency
	calls    map[string]int
}

var _ storage.Store = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{
		sessions: make(map[string]*session.Session),
		errors:   make(map[string]error),
		calls:    make(map[string]int),
	}
}

// SetLatency sets artificial latency for operations
func (m *MockStore) SetLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = d
}

// SetError sets a specific error for an operation ("get", "put", "delete",
// "health"). A nil err clears it.
func (m *MockStore) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.errors, operation)
		return
	}
	m.errors[operation] = err
}

// Calls returns how many times operation was invoked
func (m *MockStore) Calls(operation string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[operation]
}

// simulateLatencyAndFailure adds artificial latency and simulates failures
func (m *MockStore) simulateLatencyAndFailure(ctx context.Context, operation string) error {
	m.mu.Lock()
	m.calls[operation]++
	latency := m.latency
	err := m.errors[operation]
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(latency):
		}
	}
	return err
}

func (m *MockStore) Get(ctx context.Context, id string) (*session.Session, error) {
	if err := m.simulateLatencyAndFailure(ctx, "get"); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, storage.ErrSessionNotFound)
	}
	return s, nil
}

func (m *MockStore) Put(ctx context.Context, id string, s *session.Session) error {
	if err := storage.CheckPut(id, s); err != nil {
		return err
	}
	if err := m.simulateLatencyAndFailure(ctx, "put"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[id] = s
	return nil
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	if err := m.simulateLatencyAndFailure(ctx, "delete"); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *MockStore) Health(ctx context.Context) error {
	return m.simulateLatencyAndFailure(ctx, "health")
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*session.Session)
	return nil
}
