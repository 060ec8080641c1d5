package common

import (
	"io"
	"log/slog"
	"strings"
)

// SetupLogger installs a new default slog.Logger writing to 'wr'. 'level' may be "debug", "info",
// "warn" or "error" (default "info"). 'format' may be "json" or "text" (default "text").
func SetupLogger(wr io.Writer, level string, format string) *slog.Logger {

	var lvl slog.Level

	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler

	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(wr, opts)
	default:
		handler = slog.NewTextHandler(wr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
