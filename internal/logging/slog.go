package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// swapped by tests
var (
	osStdout io.Writer = os.Stdout
	osPipe             = os.Pipe
)

// SlogManager manages slog-based logging with optional GELF shipping.
type SlogManager struct {
	logger *slog.Logger
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// Option configures Setup.
type Option func(*setupConfig)

type setupConfig struct {
	gelf     MessageWriter
	facility string
	session  SessionFunc
}

// WithGELF additionally ships every record to a Graylog input.
func WithGELF(w MessageWriter, facility string) Option {
	return func(c *setupConfig) {
		c.gelf = w
		c.facility = facility
	}
}

// WithSession stamps the current floor and capture mode onto every record.
func WithSession(current SessionFunc) Option {
	return func(c *setupConfig) { c.session = current }
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the logging system. Records go to file when one is
// given and to stdout otherwise, so the operator console stays readable.
func (m *SlogManager) Setup(file io.Writer, level string, opts ...Option) {
	lvl := parseLevel(level)

	var cfg setupConfig
	for _, o := range opts {
		o(&cfg)
	}

	// Common handler options with RFC3339 time formatting
	handlerOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	var handlers []slog.Handler

	if file != nil {
		handlers = append(handlers, slog.NewTextHandler(file, handlerOpts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(osStdout, handlerOpts))
	}

	if cfg.gelf != nil {
		handlers = append(handlers, NewGELFHandler(cfg.gelf, cfg.facility, lvl))
	}

	var handler slog.Handler = handlers[0]
	if len(handlers) > 1 {
		handler = fanout(handlers)
	}
	if cfg.session != nil {
		handler = &sessionHandler{inner: handler, current: cfg.session}
	}

	m.logger = slog.New(handler)
	m.logger.Info("Logging initialized", "level", level, "gelf", cfg.gelf != nil)
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}

// fanout hands every record to each handler enabled for its level. A failing
// handler does not keep the record from the others; failures are joined.
type fanout []slog.Handler

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
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
