package main

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger builds the process logger from LOG_LEVEL (debug, info, warn,
// error) and LOG_FORMAT (text or json).
func newLogger(w io.Writer, getenv func(string) string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(getenv("LOG_FORMAT")) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
