// Package registry owns the floor scenes and hands out the active one.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/OCAP2/fingerprint-editor/internal/events"
	"github.com/OCAP2/fingerprint-editor/internal/scene"
	"github.com/OCAP2/fingerprint-editor/pkg/core"
)

// ErrRange is returned for floor numbers outside 1..Count().
var ErrRange = errors.New("floor out of range")

// LocationsProvider returns the stored locations of one floor.
type LocationsProvider func(ctx context.Context, floor int) ([]core.Location, error)

// Dependencies holds all dependencies for the registry.
type Dependencies struct {
	Palette   scene.Palette
	Images    []string // background image per floor, index 0 is floor 1
	HitRadius float64
	Publisher events.Publisher
	Logger    *slog.Logger
}

// Registry holds one FloorScene per floor.
type Registry struct {
	deps   Dependencies
	scenes []*scene.FloorScene
}

// New creates an empty registry. Call Load before Activate.
func New(deps Dependencies) *Registry {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Registry{deps: deps}
}

// Load builds scenes for floors 1..floorCount and fills them from provider.
// A failing provider leaves that floor empty instead of aborting.
func (r *Registry) Load(ctx context.Context, floorCount int, provider LocationsProvider) error {
	if floorCount < 1 {
		return fmt.Errorf("%w: need at least one floor, got %d", ErrRange, floorCount)
	}

	scenes := make([]*scene.FloorScene, 0, floorCount)
	for floor := 1; floor <= floorCount; floor++ {
		opts := []scene.Option{
			scene.WithColor(r.deps.Palette.For(floor)),
			scene.WithHitRadius(r.deps.HitRadius),
		}
		if floor-1 < len(r.deps.Images) {
			opts = append(opts, scene.WithBackground(r.deps.Images[floor-1]))
		}
		if r.deps.Publisher != nil {
			opts = append(opts, scene.WithPublisher(r.deps.Publisher))
		}
		s := scene.New(floor, opts...)
		scenes = append(scenes, s)

		if provider == nil {
			continue
		}

		locations, err := provider(ctx, floor)
		if err != nil {
			r.deps.Logger.Error("Failed to load capture locations, floor starts empty", "floor", floor, "error", err)
			continue
		}

		for _, loc := range locations {
			if err := s.AddMarker(loc.Name, loc.Position); err != nil {
				r.deps.Logger.Warn("Skipping stored capture location", "floor", floor, "name", loc.Name, "error", err)
			}
		}
		r.deps.Logger.Debug("Loaded capture locations", "floor", floor, "count", s.Len())
	}

	r.scenes = scenes
	return nil
}

// Count returns the number of floors.
func (r *Registry) Count() int {
	return len(r.scenes)
}

// Activate returns the scene to bind to the view.
func (r *Registry) Activate(floor int) (*scene.FloorScene, error) {
	if floor < 1 || floor > len(r.scenes) {
		return nil, fmt.Errorf("%w: %d (have %d floors)", ErrRange, floor, len(r.scenes))
	}
	return r.scenes[floor-1], nil
}

// Scenes returns all scenes in floor order.
func (r *Registry) Scenes() []*scene.FloorScene {
	return append([]*scene.FloorScene(nil), r.scenes...)
}
