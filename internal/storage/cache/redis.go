// Package cache stores session snapshots in Redis so several server
// replicas can serve the same session.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/paulitab/paulalb-assignment-2/internal/session"
	"github.com/paulitab/paulalb-assignment-2/internal/storage"
	"github.com/paulitab/paulalb-assignment-2/internal/storage/compression"
	"github.com/paulitab/paulalb-assignment-2/internal/storage/monitor"
)

const (
	storeName           = "redis"
	defaultKeyPrefix    = "kmeans:session:"
	defaultTTL          = time.Hour
	defaultMaxRetries   = 3
	defaultPoolSize     = 10
	defaultMinIdleConns = 2
)

// Config holds Redis configuration
type Config struct {
	Host                 string
	Port                 string
	Password             string
	DB                   int
	TTL                  time.Duration
	KeyPrefix            string
	PoolSize             int
	MinIdleConns         int
	MaxRetries           int
	CompressionThreshold int
}

// RedisStore implements storage.Store on top of Redis
type RedisStore struct {
	client *redis.Client
	config Config
	codec  compression.Codec
	opts   []session.Option
	logger zerolog.Logger
}

var _ storage.Store = (*RedisStore)(nil)

// NewRedisStore connects to Redis. opts are applied to every session
// restored from a snapshot.
func NewRedisStore(cfg Config, opts ...session.Option) (*RedisStore, error) {
	// Set defaults for optional configuration
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = defaultPoolSize
	}
	if cfg.MinIdleConns <= 0 {
		cfg.MinIdleConns = defaultMinIdleConns
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.CompressionThreshold <= 0 {
		cfg.CompressionThreshold = compression.DefaultThreshold
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}

	// Input validation
	if cfg.Host == "" {
		return nil, fmt.Errorf("host cannot be empty")
	}
	if cfg.Port == "" {
		return nil, fmt.Errorf("port cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Host + ":" + cfg.Port,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolTimeout:  4 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		config: cfg,
		codec:  compression.Codec{Threshold: cfg.CompressionThreshold},
		opts:   opts,
		logger: log.With().Str("store", storeName).Logger(),
	}, nil
}

func (rs *RedisStore) key(id string) string {
	return rs.config.KeyPrefix + id
}

// Get loads and restores the session stored under id
func (rs *RedisStore) Get(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		return nil, storage.ErrEmptyKey
	}

	start := time.Now()
	s, err := rs.get(ctx, id)
	monitor.Observe(storeName, "get", start, err, storage.IsNotFound(err))
	return s, err
}

func (rs *RedisStore) get(ctx context.Context, id string) (*session.Session, error) {
	data, err := rs.client.Get(ctx, rs.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get %s: %w", id, storage.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var snap session.Snapshot
	if err := rs.codec.Decode(data, &snap); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	opts := append(append([]session.Option{}, rs.opts...),
		session.WithLogger(rs.logger.With().Str("session_id", id).Logger()))
	s, err := session.Restore(snap, opts...)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	rs.logger.Debug().Str("session_id", id).Msg("Session restored")
	return s, nil
}

// Put stores a snapshot of s under id and refreshes its TTL
func (rs *RedisStore) Put(ctx context.Context, id string, s *session.Session) error {
	if err := storage.CheckPut(id, s); err != nil {
		return err
	}

	start := time.Now()
	data, compressed, err := rs.codec.Encode(s.Snapshot())
	if err == nil {
		monitor.StoreSnapshotBytes.WithLabelValues(storeName, fmt.Sprint(compressed)).Observe(float64(len(data)))
		err = rs.client.Set(ctx, rs.key(id), data, rs.config.TTL).Err()
		if err != nil {
			err = fmt.Errorf("failed to set session in Redis: %w", err)
		}
	}
	monitor.Observe(storeName, "put", start, err, false)
	if err != nil {
		return err
	}

	rs.logger.Debug().
		Str("session_id", id).
		Int("bytes", len(data)).
		Bool("compressed", compressed).
		Msg("Session stored")
	return nil
}

// Delete removes the session stored under id
func (rs *RedisStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return storage.ErrEmptyKey
	}

	start := time.Now()
	err := rs.client.Del(ctx, rs.key(id)).Err()
	monitor.Observe(storeName, "delete", start, err, false)
	return err
}

// Health checks the health of the Redis connection
func (rs *RedisStore) Health(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}

// Close implements proper resource cleanup
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
