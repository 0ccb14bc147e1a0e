// Package logging configures the process-wide slog logger.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var once sync.Once

// Init installs a text handler on stderr, honoring the LOG_LEVEL
// environment variable and an explicit verbose flag (CLI --verbose wins
// over LOG_LEVEL when true). Safe to call more than once; only the first
// call takes effect, mirroring a process-wide singleton logger.
func Init(verbose bool) {
	once.Do(func() {
		level := levelFromEnv()
		if verbose {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(handler))
	})
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// For returns a logger scoped to a component, the Go analogue of the
// original engine's LOG_INFO("component", subject, msg) call sites.
func For(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
