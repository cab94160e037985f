// Package scene holds the per-floor marker state: stored markers, the single
// pending marker being placed and the highlighted selection. A FloorScene is
// mode-agnostic; deciding whether pointer input may place a marker is the
// capture workflow's job.
package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/OCAP2/fingerprint-editor/internal/events"
	"github.com/OCAP2/fingerprint-editor/internal/geo"
	"github.com/OCAP2/fingerprint-editor/pkg/core"
	"golang.org/x/image/colornames"
)

var (
	// ErrDuplicateName is returned when a permanent marker with the same name exists on the floor.
	ErrDuplicateName = errors.New("duplicate marker name")
	// ErrNotFound is returned when a named marker does not exist on the floor.
	ErrNotFound = errors.New("marker not found")
	// ErrInvalidName is returned for blank marker names.
	ErrInvalidName = errors.New("marker name can not be blank")
)

// DefaultHitRadius is the marker radius, in pixels, used for hit testing.
const DefaultHitRadius = 5.0

// FloorScene owns the markers of one floor.
type FloorScene struct {
	floor      int
	background string
	radius     float64
	color      Color

	markers     map[string]*Marker
	order       []string // insertion order, last is drawn on top
	pending     *Marker
	highlighted string

	publisher events.Publisher
}

// Option configures a FloorScene.
type Option func(*FloorScene)

// WithBackground sets the floor-plan image path.
func WithBackground(path string) Option { return func(s *FloorScene) { s.background = path } }

// WithHitRadius sets the clickable radius of permanent markers.
func WithHitRadius(r float64) Option {
	return func(s *FloorScene) {
		if r > 0 {
			s.radius = r
		}
	}
}

// WithColor sets the permanent marker color.
func WithColor(c Color) Option { return func(s *FloorScene) { s.color = c } }

// WithPublisher sets where scene events go.
func WithPublisher(p events.Publisher) Option { return func(s *FloorScene) { s.publisher = p } }

// New creates an empty scene for a 1-based floor number.
func New(floor int, opts ...Option) *FloorScene {
	s := &FloorScene{
		floor:   floor,
		radius:  DefaultHitRadius,
		color:   colornames.Black,
		markers: make(map[string]*Marker),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Floor returns the scene's floor number.
func (s *FloorScene) Floor() int { return s.floor }

// Background returns the floor-plan image path.
func (s *FloorScene) Background() string { return s.background }

// Color returns the permanent marker color.
func (s *FloorScene) Color() Color { return s.color }

// HitRadius returns the clickable marker radius.
func (s *FloorScene) HitRadius() float64 { return s.radius }

// SetMarkerColor recolors existing permanent markers and sets the color for new ones.
func (s *FloorScene) SetMarkerColor(c Color) {
	s.color = c
	for _, m := range s.markers {
		m.Color = c
	}
}

// AddMarker adds a permanent marker.
func (s *FloorScene) AddMarker(name string, pos core.Position2D) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if _, ok := s.markers[name]; ok {
		return fmt.Errorf("%w: %q on floor %d", ErrDuplicateName, name, s.floor)
	}
	s.markers[name] = &Marker{Name: name, Position: pos, Kind: KindPermanent, Color: s.color}
	s.order = append(s.order, name)
	return nil
}

// HasMarker reports whether a permanent marker with the name exists.
func (s *FloorScene) HasMarker(name string) bool {
	_, ok := s.markers[name]
	return ok
}

// Marker returns a copy of the named permanent marker.
func (s *FloorScene) Marker(name string) (Marker, bool) {
	m, ok := s.markers[name]
	if !ok {
		return Marker{}, false
	}
	return *m, true
}

// Markers returns copies of all permanent markers sorted by name.
func (s *FloorScene) Markers() []Marker {
	out := make([]Marker, 0, len(s.markers))
	for _, m := range s.markers {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of permanent markers.
func (s *FloorScene) Len() int { return len(s.markers) }

// PlacePending creates or moves the pending marker and announces the new position.
func (s *FloorScene) PlacePending(pos core.Position2D) error {
	if s.pending == nil {
		s.pending = &Marker{Kind: KindPending, Color: PendingColor}
	}
	s.pending.Position = pos
	return s.publish(events.Event{Name: events.PendingPositionChanged, Position: pos})
}

// Pending returns the pending marker, if any.
func (s *FloorScene) Pending() (Marker, bool) {
	if s.pending == nil {
		return Marker{}, false
	}
	return *s.pending, true
}

// ClearPending removes the pending marker. Calling it without one is a no-op.
func (s *FloorScene) ClearPending() {
	s.pending = nil
}

// Highlight emphasizes one permanent marker, replacing any previous highlight.
func (s *FloorScene) Highlight(name string) error {
	if _, ok := s.markers[name]; !ok {
		return fmt.Errorf("%w: %q on floor %d", ErrNotFound, name, s.floor)
	}
	s.highlighted = name
	return s.publish(events.Event{Name: events.HighlightChanged, MarkerName: name})
}

// Unhighlight clears the highlight.
func (s *FloorScene) Unhighlight() error {
	if s.highlighted == "" {
		return nil
	}
	s.highlighted = ""
	return s.publish(events.Event{Name: events.HighlightChanged})
}

// Highlighted returns the highlighted marker name.
func (s *FloorScene) Highlighted() (string, bool) {
	return s.highlighted, s.highlighted != ""
}

// HitTest returns the permanent marker under (x, y). The nearest marker wins;
// on a tie the most recently added one, which is drawn on top.
func (s *FloorScene) HitTest(x, y float64) (string, bool) {
	best := ""
	bestDist := 0.0
	for i := len(s.order) - 1; i >= 0; i-- {
		m := s.markers[s.order[i]]
		region := geo.NewHitRegion(m.Position, s.radius)
		if !region.Contains(x, y) {
			continue
		}
		d := region.Distance(x, y)
		if best == "" || d < bestDist {
			best, bestDist = m.Name, d
		}
	}
	return best, best != ""
}

// Select announces a click on a permanent marker.
func (s *FloorScene) Select(name string) error {
	if _, ok := s.markers[name]; !ok {
		return fmt.Errorf("%w: %q on floor %d", ErrNotFound, name, s.floor)
	}
	return s.publish(events.Event{Name: events.MarkerSelected, MarkerName: name})
}

// Press handles a pointer press in scene coordinates. A press on a permanent
// marker selects it and leaves the pending marker untouched; anywhere else it
// places the pending marker at the nearest pixel.
func (s *FloorScene) Press(x, y float64) error {
	if name, ok := s.HitTest(x, y); ok {
		return s.Select(name)
	}
	return s.PlacePending(geo.Round(x, y))
}

func (s *FloorScene) publish(e events.Event) error {
	if s.publisher == nil {
		return nil
	}
	e.Floor = s.floor
	return s.publisher.Publish(e)
}
