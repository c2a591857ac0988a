package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/paulitab/paulalb-assignment-2/internal/api"
	"github.com/paulitab/paulalb-assignment-2/internal/config"
	"github.com/paulitab/paulalb-assignment-2/internal/dataset"
	"github.com/paulitab/paulalb-assignment-2/internal/service"
	"github.com/paulitab/paulalb-assignment-2/internal/session"
	"github.com/paulitab/paulalb-assignment-2/internal/storage"
	"github.com/paulitab/paulalb-assignment-2/internal/storage/cache"
	"github.com/paulitab/paulalb-assignment-2/internal/storage/memory"
)

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if level > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func newStore(cfg config.Config, opts ...session.Option) (storage.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendRedis:
		return cache.NewRedisStore(cache.Config{
			Host:     cfg.Redis.Host,
			Port:     strconv.Itoa(cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Store.TTL,
		}, opts...)
	default:
		return memory.New(memory.Config{
			MaxSessions: cfg.Store.MaxSessions,
			TTL:         cfg.Store.TTL,
		}), nil
	}
}

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg.Log)

	seed := cfg.Engine.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// The manager serializes all session work, so one source serves every session.
	opts := []session.Option{
		session.WithRand(rand.New(rand.NewSource(seed + 1))),
		session.WithMaxIterations(cfg.Engine.MaxIterations),
	}

	store, err := newStore(cfg, opts...)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("Failed to create session store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close session store")
		}
	}()

	generator := dataset.NewGenerator(dataset.Config{
		DefaultPoints: cfg.Dataset.DefaultPoints,
		MaxPoints:     cfg.Dataset.MaxPoints,
	}, rand.New(rand.NewSource(seed)))

	manager := service.NewManager(store, generator, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("backend", cfg.Store.Backend).
		Int("max_iterations", cfg.Engine.MaxIterations).
		Int64("seed", seed).
		Msg("Starting k-means server")

	server := api.New(api.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, manager)

	if err := server.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return
	}
	log.Info().Msg("Server stopped")
}
