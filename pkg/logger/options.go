package logger

import (
	"io"
	"log/slog"
)

// Option configures a logger created with New.
type Option func(*config)

// WithDebug lowers the level to Debug. The relay passes --debug through here.
func WithDebug(debug bool) Option {
	return func(c *config) {
		c.level = slog.LevelInfo
		if debug {
			c.level = slog.LevelDebug
		}
	}
}

// WithPretty selects the charmbracelet/log handler for terminal output.
func WithPretty(pretty bool) Option {
	return func(c *config) { c.pretty = pretty }
}

// WithJSON selects slog's JSON handler, used for log files.
func WithJSON(json bool) Option {
	return func(c *config) { c.json = json }
}

// WithPrefix tags every pretty record with prefix (e.g. "relay").
// Text and JSON records carry it as a "component" attribute instead.
func WithPrefix(prefix string) Option {
	return func(c *config) { c.prefix = prefix }
}

// WithWriter adds an output. Several writers are combined with
// io.MultiWriter; with none, records go to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.writers = append(c.writers, w)
		}
	}
}

// WithSource includes source file:line in log output.
func WithSource(source bool) Option {
	return func(c *config) { c.source = source }
}
