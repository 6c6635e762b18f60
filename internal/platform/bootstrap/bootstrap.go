package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/abgdnv/inventory/internal/platform/logger"
)

// NewLogger creates a new slog.Logger instance with the specified log level, writing JSON records to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	logLevel := toLevel(level)
	loggerOpts := &slog.HandlerOptions{
		AddSource: logLevel == slog.LevelDebug,
		Level:     logLevel,
	}
	logHandler := slog.NewJSONHandler(w, loggerOpts)
	return slog.New(logger.NewContextHandler(logHandler))
}

// OpenLogOutput returns the destination for log records: stderr when file is empty, otherwise the file opened for appending.
// The returned close function must be called on shutdown.
func OpenLogOutput(file string) (io.Writer, func() error, error) {
	if file == "" {
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", file, err)
	}
	return f, f.Close, nil
}

// toLevel converts a string representation of a log level to slog.Level.
func toLevel(level string) slog.Level {
	switch level {
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
