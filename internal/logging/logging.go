// Package logging configures the diagnostic logger and the JSONL
// training trace.
//
// Diagnostics go through log/slog: human-readable text on stderr by
// default, JSON when requested. The training trace is a separate
// append-only JSON Lines file, one record per optimizer event, intended
// for offline analysis rather than humans.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config configures the diagnostic logger. The zero value logs Info and
// above as text to stderr.
type Config struct {
	// Level is the minimum severity: "debug", "info", "warn" or "error".
	Level string

	// JSON switches the output format from text to JSON objects.
	JSON bool

	// Quiet discards all diagnostic output.
	Quiet bool

	// Writer overrides the destination. Nil means stderr.
	Writer io.Writer
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}

// New builds the diagnostic logger.
func New(cfg Config) (*slog.Logger, error) {
	if cfg.Quiet {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
