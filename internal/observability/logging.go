package observability

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process-wide structured JSON logger. Level accepts the
// usual slog names (debug, info, warn, error); anything else falls back to
// info.
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
