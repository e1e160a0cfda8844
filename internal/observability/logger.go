package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide JSON logger. Dev runs at debug with
// source locations; every other env stays at info. The service attribute
// keys log aggregation across deployments.
func NewLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if env == "dev" {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)

	return slog.New(handler).With("service", "userhub")
}
