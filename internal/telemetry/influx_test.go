package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/OCAP2/fingerprint-editor/internal/config"
	"github.com/OCAP2/fingerprint-editor/internal/events"
	"github.com/OCAP2/fingerprint-editor/pkg/core"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type fakeWriter struct {
	mu     sync.Mutex
	points []*write.Point
	err    error
}

func (f *fakeWriter) WritePoint(_ context.Context, points ...*write.Point) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.points = append(f.points, points...)
	return f.err
}

func TestNewCapturePoint(t *testing.T) {
	ts := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	p := NewCapturePoint(events.Event{
		Name:       events.CaptureAdded,
		Floor:      2,
		Position:   core.Position2D{X: 31, Y: 40},
		MarkerName: "LOBBY",
		Timestamp:  ts,
	})

	line := write.PointToLineProtocol(p, time.Second)
	assert.Equal(t, "capture_locations,floor=2,name=LOBBY x=31i,y=40i 1777888800\n", line)
}

func TestNewCapturePoint_DefaultsTimestamp(t *testing.T) {
	before := time.Now()
	p := NewCapturePoint(events.Event{Floor: 1, MarkerName: "X"})
	assert.False(t, p.Time().Before(before))
}

func TestSinkReceivesCaptures(t *testing.T) {
	bus, err := events.New(nopLogger{})
	require.NoError(t, err)

	w := &fakeWriter{}
	sink := NewWithWriter(w, nil)
	sink.Subscribe(bus)

	require.NoError(t, bus.Publish(events.Event{Name: events.CaptureAdded, Floor: 1, MarkerName: "A"}))
	require.NoError(t, bus.Publish(events.Event{Name: events.CaptureCanceled, Floor: 1}))
	require.NoError(t, bus.Publish(events.Event{Name: events.CaptureAdded, Floor: 3, MarkerName: "B"}))
	bus.Close()

	require.Len(t, w.points, 2)
	assert.Equal(t, Measurement, w.points[0].Name())
	sink.Close()
}

func TestHandleCaptureAdded_Error(t *testing.T) {
	w := &fakeWriter{err: errors.New("401 unauthorized")}
	sink := NewWithWriter(w, nil)
	assert.Error(t, sink.HandleCaptureAdded(events.Event{Name: events.CaptureAdded}))
}

func TestNew_OwnsClient(t *testing.T) {
	sink := New(config.InfluxConfig{
		Protocol: "http",
		Host:     "127.0.0.1",
		Port:     "1",
		Org:      "org",
		Bucket:   "captures",
	}, nil)
	require.NotNil(t, sink.client)
	sink.Close()
}

func TestConnect_WithoutClient(t *testing.T) {
	sink := NewWithWriter(&fakeWriter{}, nil)
	assert.ErrorIs(t, sink.Connect(context.Background()), errNoClient)
}

func TestConnect_Unreachable(t *testing.T) {
	sink := New(config.InfluxConfig{Protocol: "http", Host: "127.0.0.1", Port: "1", Org: "o", Bucket: "b"}, nil)
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, sink.Connect(ctx))
}
