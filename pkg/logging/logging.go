// Package logging configures the process-wide slog logger.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ErrLevel is returned for an unknown level name.
var ErrLevel = errors.New("unexpected log level")

// Levels lists the accepted level names.
var Levels = []string{"none", "error", "warn", "info", "debug"}

// Configure installs the default slog logger.
//
// level is one of Levels. With an empty file the logger writes text to
// stderr; otherwise it writes JSON to file, truncating it. The returned
// file, if any, must be closed by the caller on shutdown.
func Configure(level string, file string) (*os.File, error) {
	return configure(level, file, os.Stderr)
}

func configure(level, file string, console io.Writer) (*os.File, error) {
	opts := slog.HandlerOptions{}

	switch strings.ToLower(level) {
	case "none":
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return nil, nil
	case "error":
		opts.Level = slog.LevelError
	case "warn":
		opts.Level = slog.LevelWarn
	case "info", "":
		opts.Level = slog.LevelInfo
	case "debug":
		opts.Level = slog.LevelDebug
	default:
		return nil, fmt.Errorf("%w: %q", ErrLevel, level)
	}

	if file == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(console, &opts)))
		return nil, nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(f, &opts)))
	return f, nil
}
