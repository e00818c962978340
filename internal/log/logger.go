// Package log configures the hook's structured logger. All log output
// goes to stderr: stdout is reserved for the evaluator's trace lines
// that burp operators read.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup builds a logger writing text records to w at the given level.
// Unknown or empty levels fall back to INFO.
func Setup(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		l = slog.LevelDebug
	case "WARN":
		l = slog.LevelWarn
	case "ERROR":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}

// FromEnv builds the default stderr logger, reading the level from
// BURP_TIMER_LOG_LEVEL.
func FromEnv() *slog.Logger {
	return Setup(os.Stderr, os.Getenv("BURP_TIMER_LOG_LEVEL"))
}
