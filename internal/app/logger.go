package app

import (
	"io"
	"log/slog"
)

// newLogger builds the app's own logger without touching the process-wide
// slog default. An unrecognized level falls back to info; the CLI layer
// validates the string, so the fallback only matters for embedders.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "text" {
		return slog.New(slog.NewTextHandler(outW, opts))
	}
	return slog.New(slog.NewJSONHandler(outW, opts))
}
