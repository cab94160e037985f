// Package events is the observer bus that connects floor scenes, the capture
// workflow and the controller. Components publish named events; subscribers
// run synchronously on the publishing goroutine unless registered Buffered.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OCAP2/fingerprint-editor/pkg/core"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Name identifies an event kind.
type Name string

const (
	PendingPositionChanged Name = "pending_position_changed"
	MarkerSelected         Name = "marker_selected"
	CaptureAdded           Name = "capture_added"
	CaptureCanceled        Name = "capture_canceled"
	FloorChanged           Name = "floor_changed"
	HighlightChanged       Name = "highlight_changed"
)

// Event is a notification raised by the core.
type Event struct {
	Name       Name
	Floor      int
	Position   core.Position2D
	MarkerName string
	Timestamp  time.Time
}

// HandlerFunc processes an event.
type HandlerFunc func(Event) error

// Publisher is the publishing half of the bus.
type Publisher interface {
	Publish(Event) error
}

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures subscriber registration.
type Option func(*config)

type config struct {
	bufferSize int
	logged     bool
}

// Buffered runs the subscriber on its own goroutine behind a queue of the
// given size. Events are dropped when the queue is full. Buffered subscribers
// must not touch scene or workflow state.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Logged adds debug logging to the subscriber.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Bus routes events to their subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Name][]HandlerFunc
	buffers     []chan Event
	wg          sync.WaitGroup
	closed      bool
	logger      Logger

	published metric.Int64Counter
	dropped   metric.Int64Counter
}

// New creates a new Bus with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Bus, error) {
	b := &Bus{
		subscribers: make(map[Name][]HandlerFunc),
		logger:      logger,
	}

	m := meter()

	var err error

	b.published, err = m.Int64Counter(
		"events.published",
		metric.WithDescription("Total events published"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating published counter: %w", err)
	}

	b.dropped, err = m.Int64Counter(
		"events.dropped",
		metric.WithDescription("Total events dropped due to full subscriber queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return b, nil
}

// Subscribe adds a handler for the named event. Handlers run in subscription order.
func (b *Bus) Subscribe(name Name, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.logged {
		handler = b.withLogging(name, handler)
	}

	if cfg.bufferSize > 0 {
		handler = b.withBuffer(name, cfg.bufferSize, handler)
	}

	b.mu.Lock()
	b.subscribers[name] = append(b.subscribers[name], handler)
	b.mu.Unlock()
}

// Publish delivers the event to every subscriber and joins their errors.
// A failing subscriber does not stop delivery to the rest.
func (b *Bus) Publish(e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	b.mu.RLock()
	handlers := append([]HandlerFunc(nil), b.subscribers[e.Name]...)
	b.mu.RUnlock()

	b.published.Add(context.Background(), 1, metric.WithAttributes(attribute.String("event", string(e.Name))))

	var errs []error
	for _, h := range handlers {
		if err := h(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops buffered subscribers after they drain their queues.
// It must not run concurrently with Publish.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	buffers := b.buffers
	b.buffers = nil
	b.subscribers = make(map[Name][]HandlerFunc)
	b.mu.Unlock()

	for _, buf := range buffers {
		close(buf)
	}
	b.wg.Wait()
}

func (b *Bus) withBuffer(name Name, size int, h HandlerFunc) HandlerFunc {
	buffer := make(chan Event, size)

	b.mu.Lock()
	b.buffers = append(b.buffers, buffer)
	b.mu.Unlock()

	attr := attribute.String("event", string(name))

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for e := range buffer {
			if err := h(e); err != nil && b.logger != nil {
				b.logger.Error("buffered subscriber failed", "event", name, "error", err)
			}
		}
	}()

	return func(e Event) error {
		select {
		case buffer <- e:
			return nil
		default:
			b.dropped.Add(context.Background(), 1, metric.WithAttributes(attr))
			return fmt.Errorf("queue full: %s", name)
		}
	}
}

func (b *Bus) withLogging(name Name, h HandlerFunc) HandlerFunc {
	return func(e Event) error {
		if b.logger == nil {
			return h(e)
		}

		start := time.Now()
		b.logger.Debug("handling event", "event", name, "floor", e.Floor)

		err := h(e)

		if err != nil {
			b.logger.Error("event failed", "event", name, "duration", time.Since(start), "error", err)
		} else {
			b.logger.Debug("event complete", "event", name, "duration", time.Since(start))
		}

		return err
	}
}
