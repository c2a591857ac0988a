// Package memory keeps sessions in process, bounded by count and age.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"

	"github.com/paulitab/paulalb-assignment-2/internal/session"
	"github.com/paulitab/paulalb-assignment-2/internal/storage"
	"github.com/paulitab/paulalb-assignment-2/internal/storage/monitor"
)

const storeName = "memory"

// Config holds in-memory store configuration
type Config struct {
	MaxSessions int           // Maximum number of sessions kept
	TTL         time.Duration // Time-to-live since the last write
}

// DefaultConfig returns default store configuration
func DefaultConfig() Config {
	return Config{
		MaxSessions: 1024,
		TTL:         time.Hour,
	}
}

// Store is a storage.Store backed by an expiring LRU. Sessions are held by
// pointer, so the least recently written session is evicted first once
// MaxSessions is reached.
type Store struct {
	sessions *expirable.LRU[string, *session.Session]
	config   Config
}

var _ storage.Store = (*Store)(nil)

// New creates a new in-memory store
func New(cfg Config) *Store {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultConfig().MaxSessions
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}

	onEvict := func(id string, _ *session.Session) {
		monitor.StoreEvictions.WithLabelValues(storeName).Inc()
		log.Debug().Str("session_id", id).Msg("Session evicted")
	}

	return &Store{
		sessions: expirable.NewLRU[string, *session.Session](cfg.MaxSessions, onEvict, cfg.TTL),
		config:   cfg,
	}
}

// Get returns the session stored under id
func (m *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		return nil, storage.ErrEmptyKey
	}

	start := time.Now()
	s, ok := m.sessions.Get(id)
	monitor.Observe(storeName, "get", start, nil, !ok)
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, storage.ErrSessionNotFound)
	}
	return s, nil
}

// Put stores s under id and refreshes its TTL
func (m *Store) Put(ctx context.Context, id string, s *session.Session) error {
	if err := storage.CheckPut(id, s); err != nil {
		return err
	}

	start := time.Now()
	m.sessions.Add(id, s)
	monitor.Observe(storeName, "put", start, nil, false)
	monitor.StoreSessions.WithLabelValues(storeName).Set(float64(m.sessions.Len()))
	return nil
}

// Delete removes the session stored under id
func (m *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return storage.ErrEmptyKey
	}

	start := time.Now()
	m.sessions.Remove(id)
	monitor.Observe(storeName, "delete", start, nil, false)
	monitor.StoreSessions.WithLabelValues(storeName).Set(float64(m.sessions.Len()))
	return nil
}

// Len returns the number of live sessions
func (m *Store) Len() int {
	return m.sessions.Len()
}

// Health always succeeds for the in-memory store
func (m *Store) Health(ctx context.Context) error {
	return nil
}

// Close drops every session
func (m *Store) Close() error {
	m.sessions.Purge()
	return nil
}
