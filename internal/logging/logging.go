// Package logging builds the slog loggers used by the CLI and the MCP
// server.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LevelSilent is above every standard level and suppresses all output.
const LevelSilent = slog.Level(100)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger creates a logger writing to w in the given format.
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewDiscardLogger creates a logger that discards all output.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: LevelSilent}))
}

// ParseLevel converts a level name to a slog.Level.
// Supports: debug, info, warn, error, silent (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "silent", "off":
		return LevelSilent, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %q (expected debug, info, warn, error or silent)", s)
	}
}

// ValidFormat reports whether format names a log format.
func ValidFormat(format string) bool {
	switch strings.ToLower(format) {
	case FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

// LevelFromVerbosity converts CLI verbosity flags to a slog.Level.
//   - quiet=true: suppresses all logs
//   - verbosity=0: fallback
//   - verbosity=1: info
//   - verbosity>=2: debug
func LevelFromVerbosity(verbosity int, quiet bool, fallback slog.Level) slog.Level {
	if quiet {
		return LevelSilent
	}
	switch {
	case verbosity <= 0:
		return fallback
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
