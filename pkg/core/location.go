// pkg/core/location.go
package core

import "fmt"

// Position2D is a point in floor-image pixel coordinates.
type Position2D struct {
	X int
	Y int
}

// String renders the position as "(x,y)".
func (p Position2D) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Location is a named capture location on one floor, as stored.
type Location struct {
	Name     string
	Floor    int
	Position Position2D
}
