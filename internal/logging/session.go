package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Session is the editor state stamped onto every log record.
type Session struct {
	Floor     int
	Capturing bool
	// CaptureID identifies the open capture session, empty while idle.
	CaptureID string
}

// Attrs returns the record attributes for the session.
func (s Session) Attrs() []slog.Attr {
	mode := "idle"
	if s.Capturing {
		mode = "capturing"
	}
	attrs := []slog.Attr{slog.Int("floor", s.Floor), slog.String("mode", mode)}
	if s.Capturing && s.CaptureID != "" {
		attrs = append(attrs, slog.String("capture", s.CaptureID))
	}
	return attrs
}

// SessionFunc reports the current session. ok is false until the editor is
// wired, and records are then logged without session attributes.
type SessionFunc func() (s Session, ok bool)

type sessionHandler struct {
	inner   slog.Handler
	current SessionFunc
}

func (h *sessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *sessionHandler) Handle(ctx context.Context, r slog.Record) error {
	if s, ok := h.current(); ok {
		r.AddAttrs(s.Attrs()...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *sessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &sessionHandler{inner: h.inner.WithAttrs(attrs), current: h.current}
}

func (h *sessionHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &sessionHandler{inner: h.inner.WithGroup(name), current: h.current}
}

// OpenSessionLog creates dir if needed and opens a log file named after the
// editor start time, e.g. fingerprint_editor.20260212_213836.log.
func OpenSessionLog(dir string, start time.Time) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir %s: %w", dir, err)
	}
	name := filepath.Join(dir, fmt.Sprintf("fingerprint_editor.%s.log", start.Format("20060102_150405")))
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
