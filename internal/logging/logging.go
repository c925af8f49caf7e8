// Package logging builds the structured slog loggers used across ontoscope.
//
// One-shot commands log human-readable text to stderr. The interactive
// explorer owns the terminal, so it logs JSON to a file instead.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Options configures a logger.
type Options struct {
	Level   string    // debug, info, warn, error; empty = info
	Writer  io.Writer // destination, nil = os.Stderr
	JSON    bool      // JSON records instead of text
	Session string    // session attribute, empty = a new short id
}

// ParseLevel maps a level name to a slog level. Unknown names are an error.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// NewSessionID returns a short random id for correlating one run's records.
func NewSessionID() string {
	return uuid.NewString()[:8]
}

// New returns a logger writing to opts.Writer. Every record carries a
// session attribute.
func New(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	hopts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, hopts)
	} else {
		handler = slog.NewTextHandler(w, hopts)
	}

	session := opts.Session
	if session == "" {
		session = NewSessionID()
	}
	handler = handler.WithAttrs([]slog.Attr{slog.String("session", session)})

	return slog.New(handler), nil
}

// OpenFile returns a JSON logger appending to path. The caller closes the
// returned file when the session ends.
func OpenFile(path string, opts Options) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	opts.Writer = f
	opts.JSON = true
	logger, err := New(opts)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return logger, f, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
