// Package logging configures the process wide slog logger from the CLI
// verbosity flags.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// LevelFromFlags maps the verbosity flags to a level. The flags are checked
// in the order vv, v, q; without any of them the level is Warn.
func LevelFromFlags(vv, v, q bool) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Setup installs a text handler on stderr as the default logger
func Setup(vv, v, q bool) *slog.Logger {
	return SetupWriter(os.Stderr, LevelFromFlags(vv, v, q))
}

// SetupWriter installs a text handler on w as the default logger
func SetupWriter(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
