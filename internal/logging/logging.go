package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLogLevel selects the log level for both binaries.
const EnvLogLevel = "LOG_LEVEL"

// Init installs a text slog logger on stderr as the process default and
// returns it. LOG_LEVEL overrides fallback.
func Init(fallback slog.Level) *slog.Logger {
	logger := New(os.Stderr, levelFromEnv(fallback))
	slog.SetDefault(logger)
	return logger
}

// New returns a text logger writing to w.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(
		slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: level,
		}),
	)
}

func levelFromEnv(fallback slog.Level) slog.Level {
	l, ok := os.LookupEnv(EnvLogLevel)
	if !ok {
		return fallback
	}
	return ParseLevel(l, fallback)
}

// ParseLevel maps a level name, including the dev/prod aliases, to a slog
// level. Unknown names return fallback.
func ParseLevel(name string, fallback slog.Level) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "dev", "development", "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "production", "prod":
		return slog.LevelError
	}
	return fallback
}
