// Package config loads server configuration from defaults, an optional
// file and KMEANS_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "KMEANS"

// Store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the full server configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type EngineConfig struct {
	MaxIterations int   `mapstructure:"max_iterations"`
	Seed          int64 `mapstructure:"seed"` // 0 seeds from the clock
}

type DatasetConfig struct {
	DefaultPoints int `mapstructure:"default_points"`
	MaxPoints     int `mapstructure:"max_points"`
}

type StoreConfig struct {
	Backend     string        `mapstructure:"backend"`
	MaxSessions int           `mapstructure:"max_sessions"`
	TTL         time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":3000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Engine: EngineConfig{
			MaxIterations: 10,
		},
		Dataset: DatasetConfig{
			DefaultPoints: 100,
			MaxPoints:     10000,
		},
		Store: StoreConfig{
			Backend:     BackendMemory,
			MaxSessions: 1024,
			TTL:         time.Hour,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("engine.max_iterations", d.Engine.MaxIterations)
	v.SetDefault("engine.seed", d.Engine.Seed)
	v.SetDefault("dataset.default_points", d.Dataset.DefaultPoints)
	v.SetDefault("dataset.max_points", d.Dataset.MaxPoints)
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.max_sessions", d.Store.MaxSessions)
	v.SetDefault("store.ttl", d.Store.TTL)
	v.SetDefault("redis.host", d.Redis.Host)
	v.SetDefault("redis.port", d.Redis.Port)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.pretty", d.Log.Pretty)
}

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment apply.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every setting the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Engine.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("engine.max_iterations must be at least 1, got %d", c.Engine.MaxIterations))
	}
	if c.Dataset.MaxPoints < 1 {
		errs = append(errs, fmt.Errorf("dataset.max_points must be positive, got %d", c.Dataset.MaxPoints))
	}
	if c.Dataset.DefaultPoints < 1 || c.Dataset.DefaultPoints > c.Dataset.MaxPoints {
		errs = append(errs, fmt.Errorf("dataset.default_points must be between 1 and %d, got %d",
			c.Dataset.MaxPoints, c.Dataset.DefaultPoints))
	}
	switch c.Store.Backend {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("store.backend must be %q or %q, got %q", BackendMemory, BackendRedis, c.Store.Backend))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
