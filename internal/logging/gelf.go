package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Graylog2/go-gelf/gelf"
)

// MessageWriter sends one GELF message. *gelf.Writer implements it.
type MessageWriter interface {
	WriteMessage(m *gelf.Message) error
}

// NewGELFWriter dials a Graylog UDP input.
func NewGELFWriter(addr string) (*gelf.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create GELF writer for %s: %w", addr, err)
	}
	return w, nil
}

// GELFHandler is a slog.Handler that turns records into GELF messages.
// Attributes become additional fields; groups are joined with underscores.
type GELFHandler struct {
	w        MessageWriter
	host     string
	facility string
	level    slog.Leveler
	attrs    []slog.Attr
	prefix   string
}

// NewGELFHandler creates a handler writing records at or above level to w.
func NewGELFHandler(w MessageWriter, facility string, level slog.Leveler) *GELFHandler {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	return &GELFHandler{w: w, host: host, facility: facility, level: level}
}

// Enabled reports whether level is at or above the handler's minimum.
func (h *GELFHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle converts and sends the record.
func (h *GELFHandler) Handle(_ context.Context, r slog.Record) error {
	extra := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		addExtra(extra, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addExtra(extra, h.prefix, a)
		return true
	})

	msg := &gelf.Message{
		Version:  "1.1",
		Host:     h.host,
		Short:    r.Message,
		TimeUnix: float64(r.Time.UnixNano()) / 1e9,
		Level:    syslogLevel(r.Level),
		Facility: h.facility,
		Extra:    extra,
	}
	return h.w.WriteMessage(msg)
}

// WithAttrs returns a handler that adds attrs to every message.
func (h *GELFHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		next.attrs = append(next.attrs, a)
	}
	return &next
}

// WithGroup returns a handler that prefixes later attribute keys.
func (h *GELFHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "_"
	return &next
}

func addExtra(extra map[string]interface{}, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "_"
		}
		for _, ga := range a.Value.Group() {
			addExtra(extra, p, ga)
		}
		return
	}
	// GELF reserves "id" and requires additional fields to start with an underscore
	key := strings.ReplaceAll(prefix+a.Key, " ", "_")
	if key == "id" {
		key = "id_"
	}
	extra["_"+key] = gelfValue(a.Value)
}

func gelfValue(v slog.Value) interface{} {
	switch v.Kind() {
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	default:
		return v.String()
	}
}

// syslogLevel maps slog levels onto the syslog severities GELF uses.
func syslogLevel(l slog.Level) int32 {
	switch {
	case l >= slog.LevelError:
		return 3
	case l >= slog.LevelWarn:
		return 4
	case l >= slog.LevelInfo:
		return 6
	default:
		return 7
	}
}
