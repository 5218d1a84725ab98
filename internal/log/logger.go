// Package log configures the process-wide structured logger.
package log

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs a text slog handler as the default logger. Every
// record carries the service name so logs from the API server and the
// workers can be told apart in a shared stream.
func Setup(service string, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With(FieldService, service)
	slog.SetDefault(logger)
	return logger
}

// LevelFromEnv reads LOG_LEVEL, defaulting to info.
func LevelFromEnv() slog.Level {
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
