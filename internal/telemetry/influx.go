// Package telemetry ships committed captures to InfluxDB as time series
// points. It only reads event payloads and never touches scene state.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/OCAP2/fingerprint-editor/internal/config"
	"github.com/OCAP2/fingerprint-editor/internal/events"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
)

var errNoClient = errors.New("sink has no InfluxDB client")

// retention of the capture bucket when it has to be created
const retentionSeconds = 60 * 60 * 24 * 365

// Measurement is the InfluxDB measurement captures are written to.
const Measurement = "capture_locations"

const (
	queueSize    = 64
	writeTimeout = 5 * time.Second
)

// PointWriter writes points synchronously. api.WriteAPIBlocking implements it.
type PointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Sink writes one point per capture_added event.
type Sink struct {
	cfg    config.InfluxConfig
	client influxdb2.Client
	writer PointWriter
	logger *slog.Logger
}

// New connects to the InfluxDB instance described by cfg.
func New(cfg config.InfluxConfig, logger *slog.Logger) *Sink {
	client := influxdb2.NewClientWithOptions(
		cfg.URL(),
		cfg.Token,
		influxdb2.DefaultOptions().
			SetHTTPRequestTimeout(uint(writeTimeout/time.Second)),
	)
	s := NewWithWriter(client.WriteAPIBlocking(cfg.Org, cfg.Bucket), logger)
	s.cfg = cfg
	s.client = client
	return s
}

// NewWithWriter creates a sink around an existing writer.
func NewWithWriter(w PointWriter, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{writer: w, logger: logger}
}

// Connect checks that the server is reachable and creates the organization
// and bucket when they are missing.
func (s *Sink) Connect(ctx context.Context) error {
	if s.client == nil {
		return errNoClient
	}

	running, err := s.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("influxdb at %s is not reachable: %w", s.cfg.URL(), err)
	}
	if !running {
		return fmt.Errorf("influxdb at %s is not running", s.cfg.URL())
	}

	// ensure org exists
	org, err := s.client.OrganizationsAPI().FindOrganizationByName(ctx, s.cfg.Org)
	if err != nil {
		s.logger.Info("Organization not found, creating", "org", s.cfg.Org)
		org, err = s.client.OrganizationsAPI().CreateOrganizationWithName(ctx, s.cfg.Org)
		if err != nil {
			return fmt.Errorf("error creating organization %s: %w", s.cfg.Org, err)
		}
	}

	// ensure bucket exists
	if _, err = s.client.BucketsAPI().FindBucketByName(ctx, s.cfg.Bucket); err != nil {
		s.logger.Info("Bucket not found, creating", "bucket", s.cfg.Bucket)
		rule := domain.RetentionRuleTypeExpire
		_, err = s.client.BucketsAPI().CreateBucketWithName(ctx, org, s.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: retentionSeconds,
		})
		if err != nil {
			return fmt.Errorf("error creating bucket %s: %w", s.cfg.Bucket, err)
		}
	}
	return nil
}

// Subscribe registers the sink as a buffered capture_added subscriber.
func (s *Sink) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.CaptureAdded, s.HandleCaptureAdded, events.Buffered(queueSize))
}

// HandleCaptureAdded writes the capture as a point.
func (s *Sink) HandleCaptureAdded(e events.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := s.writer.WritePoint(ctx, NewCapturePoint(e)); err != nil {
		s.logger.Warn("Failed to write capture telemetry", "name", e.MarkerName, "error", err)
		return err
	}
	return nil
}

// Close releases the client, if the sink owns one.
func (s *Sink) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// NewCapturePoint builds the point for a capture_added event.
func NewCapturePoint(e events.Event) *write.Point {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return influxdb2.NewPoint(
		Measurement,
		map[string]string{
			"floor": strconv.Itoa(e.Floor),
			"name":  e.MarkerName,
		},
		map[string]interface{}{
			"x": e.Position.X,
			"y": e.Position.Y,
		},
		ts,
	)
}
