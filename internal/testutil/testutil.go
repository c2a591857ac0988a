// Package testutil holds helpers shared by package tests.
package testutil

import (
	"math/rand"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/paulitab/paulalb-assignment-2/internal/geometry"
)

// SetLogLevel sets the global log level for testing
func SetLogLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// TestLogLevel sets the global log level for the duration of a test
func TestLogLevel(t *testing.T, level zerolog.Level) {
	t.Helper()
	prevLevel := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(level)
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prevLevel)
	})
}

// InitTestLogger initializes a test-friendly logger. The level comes from
// LOG_LEVEL and defaults to warn so passing tests stay quiet.
func InitTestLogger() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	log.Logger = zerolog.New(output).With().Timestamp().Caller().Logger()
	zerolog.SetGlobalLevel(ParseLogLevel(zerolog.WarnLevel))
}

// ParseLogLevel parses log level from environment variable or returns default
func ParseLogLevel(defaultLevel zerolog.Level) zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		return defaultLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return defaultLevel
	}
	return level
}

// Points builds a dataset from flattened x, y pairs.
func Points(xy ...float64) []geometry.Point {
	if len(xy)%2 != 0 {
		panic("testutil.Points needs an even number of coordinates")
	}
	points := make([]geometry.Point, 0, len(xy)/2)
	for i := 0; i < len(xy); i += 2 {
		points = append(points, geometry.Point{X: xy[i], Y: xy[i+1]})
	}
	return points
}

// Rand returns a deterministic random source.
func Rand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
