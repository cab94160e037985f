// Package view holds the zoom transform of the map view. Scale is a view
// concern only and never changes scene coordinates.
package view

import (
	"errors"
	"fmt"

	"github.com/OCAP2/fingerprint-editor/internal/scene"
)

// ErrZoomRange is returned for zoom values outside (0, MaxZoom].
var ErrZoomRange = errors.New("zoom out of range")

// MaxZoom is the slider maximum; at this value the floor plan is shown 1:1.
const MaxZoom = 100

// Viewport binds the active scene and applies the zoom transform to it.
type Viewport struct {
	zoom   int
	factor float64
	scene  *scene.FloorScene
}

// New creates a viewport at the given zoom value.
func New(zoom int) (*Viewport, error) {
	v := &Viewport{}
	if err := v.SetZoom(zoom); err != nil {
		return nil, err
	}
	return v, nil
}

// SetZoom sets the slider value; the linear scale becomes MaxZoom/value.
func (v *Viewport) SetZoom(value int) error {
	if value <= 0 || value > MaxZoom {
		return fmt.Errorf("%w: %d not in (0,%d]", ErrZoomRange, value, MaxZoom)
	}
	v.zoom = value
	v.apply()
	return nil
}

// Bind makes s the displayed scene. Binding resets the transform, so the
// current zoom is reapplied.
func (v *Viewport) Bind(s *scene.FloorScene) {
	v.scene = s
	v.factor = 1
	v.apply()
}

func (v *Viewport) apply() {
	v.factor = float64(MaxZoom) / float64(v.zoom)
}

// Zoom returns the slider value.
func (v *Viewport) Zoom() int { return v.zoom }

// Factor returns the linear scale applied to the scene.
func (v *Viewport) Factor() float64 { return v.factor }

// Scene returns the bound scene, or nil.
func (v *Viewport) Scene() *scene.FloorScene { return v.scene }

// ToScene maps a viewport position to scene coordinates.
func (v *Viewport) ToScene(vx, vy float64) (float64, float64) {
	return vx / v.factor, vy / v.factor
}
