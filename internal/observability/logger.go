package observability

import (
	"log/slog"
	"os"
)

// NewLogger returns the process-wide JSON logger. Every line carries the
// service name so api and worker logs can share one sink.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler).With("service", "dicoevent")
}
