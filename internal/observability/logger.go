package observability

import (
	"log/slog"
	"os"
)

// NewLogger returns the process-wide structured logger. JSON output keeps the
// log lines machine-parseable alongside the audit trail.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
