package logging

import (
	"log/slog"
	"os"
)

// Init configures the default slog logger for the given service name.
// The level is read from LOG_LEVEL; unset defaults to info.
func Init(service string) {
	level := slog.LevelInfo

	if l, ok := os.LookupEnv("LOG_LEVEL"); ok {
		switch l {
		case "dev", "development", "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn", "warning":
			level = slog.LevelWarn
		case "error", "production", "prod":
			level = slog.LevelError
		}
	}

	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}),
	).With("service", service)
	slog.SetDefault(logger)
}
