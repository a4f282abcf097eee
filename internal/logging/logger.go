// Package logging configures the application-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps "debug", "info", "warn" and "error" to a slog level.
// Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w. format is "json" or "text".
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Init installs the default logger. Records go to stderr and, when path is
// set, to a size-capped log file as well. The returned closer releases the
// file; it is never nil.
func Init(level, format, path string) (*slog.Logger, io.Closer, error) {
	w := io.Writer(os.Stderr)
	closer := io.Closer(nopCloser{})

	if path != "" {
		fw, err := NewFileWriter(path)
		if err != nil {
			return nil, nil, err
		}
		w = io.MultiWriter(os.Stderr, fw)
		closer = fw
	}

	logger := New(w, level, format)
	slog.SetDefault(logger)
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
