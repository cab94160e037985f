package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/OCAP2/fingerprint-editor/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// FLOOR POINTS
// Floor plans are addressed in image pixels. Pointer input arrives as floats
// (after the view transform) and is rounded to the nearest pixel before it is
// staged or stored.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Round converts a pointer position to the nearest pixel, rounding halves away from zero.
func Round(x, y float64) core.Position2D {
	return core.Position2D{X: int(math.Round(x)), Y: int(math.Round(y))}
}

// ParseXY parses "x,y" (optionally bracketed) into raw float coordinates.
func ParseXY(s string) (x, y float64, err error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidCoordinates
	}
	x, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, ErrInvalidCoordinates
	}
	y, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, ErrInvalidCoordinates
	}
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, ErrInvalidCoordinates
	}
	return x, y, nil
}

// PointFromPosition builds a geom point for a pixel position.
func PointFromPosition(p core.Position2D) geom.Point {
	pt, err := geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: float64(p.X), Y: float64(p.Y)},
		Type: geom.DimXY,
	})
	if err != nil {
		return geom.NewEmptyPoint(geom.DimXY)
	}
	return pt
}

// HitRegion is the circular clickable area of a marker.
type HitRegion struct {
	center geom.Point
	radius float64
}

// NewHitRegion returns the hit region of a marker drawn at p with the given radius.
func NewHitRegion(p core.Position2D, radius float64) HitRegion {
	return HitRegion{center: PointFromPosition(p), radius: radius}
}

// Distance returns the distance from the region center to (x, y).
func (h HitRegion) Distance(x, y float64) float64 {
	c, ok := h.center.Coordinates()
	if !ok {
		return math.Inf(1)
	}
	return math.Hypot(x-c.X, y-c.Y)
}

// Contains reports whether (x, y) falls inside the region, boundary included.
func (h HitRegion) Contains(x, y float64) bool {
	return h.Distance(x, y) <= h.radius
}
