package logger

import (
	"context"
	"errors"
	"log/slog"
)

// fanout sends each record to every enabled sink. A sink that fails to write
// does not stop the others; the errors are joined.
type fanout []slog.Handler

// Multi combines loggers into one. `aiterm serve --log-file` uses it to keep
// the terminal output and a JSON file in step. Nop loggers are dropped.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	var sinks fanout
	for _, l := range loggers {
		if _, nop := l.Handler().(nopHandler); nop {
			continue
		}
		sinks = append(sinks, l.Handler())
	}
	if len(sinks) == 0 {
		return Nop()
	}
	return slog.New(sinks)
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) derive(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
