package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paulitab/paulalb-assignment-2/internal/clustering"
	"github.com/paulitab/paulalb-assignment-2/internal/geometry"
	"github.com/paulitab/paulalb-assignment-2/internal/session"
	"github.com/paulitab/paulalb-assignment-2/internal/storage"
	"github.com/paulitab/paulalb-assignment-2/internal/testutil"
)

func newTestStore(t *testing.T, cfg Config) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	cfg.Host = s.Host()
	cfg.Port = s.Port()
	store, err := NewRedisStore(cfg, session.WithRand(testutil.Rand(1)))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, s
}

func steppedSession(t *testing.T, dataset []geometry.Point) *session.Session {
	t.Helper()
	s := session.New(session.WithRand(testutil.Rand(3)))
	s.LoadDataset(dataset)
	_, err := s.Initialize(session.Params{K: 2, Strategy: clustering.StrategyFarthestFirst})
	require.NoError(t, err)
	_, err = s.Step(nil)
	require.NoError(t, err)
	return s
}

func TestRedisStore(t *testing.T) {
	store, mr := newTestStore(t, Config{TTL: time.Minute})
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		_, err := store.Get(ctx, "nobody")
		require.Error(t, err)
		assert.True(t, storage.IsNotFound(err))
	})

	t.Run("round trip", func(t *testing.T) {
		s := steppedSession(t, testutil.Points(0, 0, 0, 1, 10, 0, 10, 1))
		require.NoError(t, store.Put(ctx, "abc", s))
		assert.True(t, mr.Exists(defaultKeyPrefix+"abc"))

		got, err := store.Get(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, s.Snapshot(), got.Snapshot())

		want, err := s.Step(nil)
		require.NoError(t, err)
		next, err := got.Step(nil)
		require.NoError(t, err)
		assert.Equal(t, want, next)
	})

	t.Run("ttl", func(t *testing.T) {
		s := session.New()
		s.LoadDataset(testutil.Points(1, 1))
		require.NoError(t, store.Put(ctx, "short", s))
		assert.Equal(t, time.Minute, mr.TTL(defaultKeyPrefix+"short"))

		mr.FastForward(2 * time.Minute)
		_, err := store.Get(ctx, "short")
		assert.True(t, storage.IsNotFound(err))
	})

	t.Run("delete", func(t *testing.T) {
		s := session.New()
		require.NoError(t, store.Put(ctx, "gone", s))
		require.NoError(t, store.Delete(ctx, "gone"))
		_, err := store.Get(ctx, "gone")
		assert.True(t, storage.IsNotFound(err))
	})

	t.Run("invalid arguments", func(t *testing.T) {
		assert.ErrorIs(t, store.Put(ctx, "", session.New()), storage.ErrEmptyKey)
		assert.ErrorIs(t, store.Put(ctx, "x", nil), storage.ErrNilSession)
		_, err := store.Get(ctx, "")
		assert.ErrorIs(t, err, storage.ErrEmptyKey)
		assert.ErrorIs(t, store.Delete(ctx, ""), storage.ErrEmptyKey)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		require.NoError(t, mr.Set(defaultKeyPrefix+"bad", "{not json"))
		_, err := store.Get(ctx, "bad")
		require.Error(t, err)
		assert.False(t, storage.IsNotFound(err))
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, store.Health(ctx))
	})
}

func TestRedisStoreCompressesLargeSnapshots(t *testing.T) {
	store, mr := newTestStore(t, Config{CompressionThreshold: 256, KeyPrefix: "t:"})
	ctx := context.Background()

	rng := testutil.Rand(4)
	dataset := make([]geometry.Point, 500)
	for i := range dataset {
		dataset[i] = geometry.Point{X: rng.Float64(), Y: rng.Float64()}
	}
	s := steppedSession(t, dataset)
	require.NoError(t, store.Put(ctx, "big", s))

	raw, err := mr.Get("t:big")
	require.NoError(t, err)
	assert.Equal(t, byte(0x1f), raw[0], "payload should be gzipped")

	got, err := store.Get(ctx, "big")
	require.NoError(t, err)
	assert.Equal(t, s.Snapshot(), got.Snapshot())
}

func TestNewRedisStoreValidation(t *testing.T) {
	_, err := NewRedisStore(Config{Port: "6379"})
	assert.Error(t, err)
	_, err = NewRedisStore(Config{Host: "localhost"})
	assert.Error(t, err)
}
