// Package service is the serving-layer entry point to the clustering engine.
// It maps session identifiers to sessions and runs one operation at a time.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/paulitab/paulalb-assignment-2/internal/dataset"
	"github.com/paulitab/paulalb-assignment-2/internal/geometry"
	"github.com/paulitab/paulalb-assignment-2/internal/session"
	"github.com/paulitab/paulalb-assignment-2/internal/storage"
)

// DefaultSessionID names the session used by clients that send no id.
const DefaultSessionID = "default"

// Manager coordinates the session store, the dataset generator and the
// session state machine. Sessions do no locking of their own, so every
// operation holds mu from load to save.
type Manager struct {
	store     storage.Store
	generator *dataset.Generator
	opts      []session.Option
	mu        sync.Mutex
	logger    zerolog.Logger
}

// NewManager creates a manager. opts are applied to every new session and
// should match those given to stores that restore sessions themselves.
func NewManager(store storage.Store, generator *dataset.Generator, opts ...session.Option) *Manager {
	return &Manager{
		store:     store,
		generator: generator,
		opts:      opts,
		logger:    log.With().Str("component", "manager").Logger(),
	}
}

func (m *Manager) newSession(id string) *session.Session {
	opts := append(append([]session.Option{}, m.opts...),
		session.WithLogger(log.With().Str("session_id", id).Logger()))
	return session.New(opts...)
}

// load returns the stored session or a fresh idle one. The caller holds mu.
func (m *Manager) load(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		id = DefaultSessionID
	}
	s, err := m.store.Get(ctx, id)
	if storage.IsNotFound(err) {
		m.logger.Debug().Str("session_id", id).Msg("Creating session")
		return m.newSession(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return s, nil
}

func (m *Manager) save(ctx context.Context, id string, s *session.Session) error {
	if id == "" {
		id = DefaultSessionID
	}
	if err := m.store.Put(ctx, id, s); err != nil {
		return fmt.Errorf("failed to save session %s: %w", id, err)
	}
	return nil
}

// CreateSession stores a new idle session under a fresh identifier.
func (m *Manager) CreateSession(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	if err := m.save(ctx, id, m.newSession(id)); err != nil {
		return "", err
	}
	m.logger.Info().Str("session_id", id).Msg("Session created")
	return id, nil
}

// GenerateDataset samples n points (0 for the configured default) and
// loads them into the session.
func (m *Manager) GenerateDataset(ctx context.Context, id string, n int) ([]geometry.Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	points, err := m.generator.Generate(n)
	if err != nil {
		return nil, err
	}

	s, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.LoadDataset(points)
	if err := m.save(ctx, id, s); err != nil {
		return nil, err
	}

	m.logger.Info().Str("session_id", id).Int("points", len(points)).Msg("New dataset generated")
	return points, nil
}

// LoadDataset loads caller supplied points into the session.
func (m *Manager) LoadDataset(ctx context.Context, id string, points []geometry.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	s.LoadDataset(points)
	return m.save(ctx, id, s)
}

// Initialize seeds the session's centroids.
func (m *Manager) Initialize(ctx context.Context, id string, p session.Params) (session.InitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.load(ctx, id)
	if err != nil {
		return session.InitResult{}, err
	}
	res, err := s.Initialize(p)
	if err != nil {
		return session.InitResult{}, err
	}
	if err := m.save(ctx, id, s); err != nil {
		return session.InitResult{}, err
	}
	return res, nil
}

// Step advances the session by one iteration. fallback seeds a session
// that has no centroids yet.
func (m *Manager) Step(ctx context.Context, id string, fallback *session.Params) (session.StepResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.load(ctx, id)
	if err != nil {
		return session.StepResult{}, err
	}
	res, err := s.Step(fallback)
	if err != nil {
		return session.StepResult{}, err
	}
	if err := m.save(ctx, id, s); err != nil {
		return session.StepResult{}, err
	}
	return res, nil
}

// Reset clears the session's clustering progress and returns its dataset.
func (m *Manager) Reset(ctx context.Context, id string) ([]geometry.Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	points, err := s.Reset()
	if err != nil {
		return nil, err
	}
	if err := m.save(ctx, id, s); err != nil {
		return nil, err
	}
	return points, nil
}

// Snapshot returns the current state of a session without changing it.
func (m *Manager) Snapshot(ctx context.Context, id string) (session.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.load(ctx, id)
	if err != nil {
		return session.Snapshot{}, err
	}
	return s.Snapshot(), nil
}

// DeleteSession drops a session.
func (m *Manager) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = DefaultSessionID
	}
	return m.store.Delete(ctx, id)
}

// Health checks the session store.
func (m *Manager) Health(ctx context.Context) error {
	return m.store.Health(ctx)
}

// DatasetConfig exposes the generator bounds.
func (m *Manager) DatasetConfig() dataset.Config {
	return m.generator.Config()
}
