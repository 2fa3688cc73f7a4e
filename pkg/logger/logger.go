// Package logger builds the *slog.Logger values aiterm passes around. The
// relay logs pretty records to the terminal and, optionally, JSON to a file;
// the chat UI owns the terminal and only ever logs to a file.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level   slog.Level
	pretty  bool
	json    bool
	source  bool
	prefix  string
	writers []io.Writer
}

// New creates a *slog.Logger. Without options it writes slog text records at
// Info level to os.Stdout.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo}
	for _, opt := range opts {
		opt(c)
	}

	var w io.Writer = os.Stdout
	switch len(c.writers) {
	case 0:
	case 1:
		w = c.writers[0]
	default:
		w = io.MultiWriter(c.writers...)
	}

	if c.pretty {
		h := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(c.level),
			Prefix:          c.prefix,
			ReportTimestamp: true,
			ReportCaller:    c.source,
		})
		return slog.New(h)
	}

	hopts := &slog.HandlerOptions{Level: c.level, AddSource: c.source}
	var h slog.Handler = slog.NewTextHandler(w, hopts)
	if c.json {
		h = slog.NewJSONHandler(w, hopts)
	}

	l := slog.New(h)
	if c.prefix != "" {
		l = l.With("component", c.prefix)
	}
	return l
}

// OpenFile opens path for appending log records, creating it (and its parent
// directory) with owner-only permissions.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
