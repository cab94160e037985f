// Package convert provides functions to convert GORM models to core models and back
package convert

import (
	"github.com/OCAP2/fingerprint-editor/internal/model"
	"github.com/OCAP2/fingerprint-editor/pkg/core"
)

// LocationToCore converts a GORM CaptureLocation to a core.Location.
func LocationToCore(l model.CaptureLocation) core.Location {
	return core.Location{
		Name:     l.Name,
		Floor:    l.Floor,
		Position: core.Position2D{X: l.XPos, Y: l.YPos},
	}
}

// LocationsToCore converts a slice of GORM rows, keeping order.
func LocationsToCore(rows []model.CaptureLocation) []core.Location {
	out := make([]core.Location, len(rows))
	for i, r := range rows {
		out[i] = LocationToCore(r)
	}
	return out
}

// CoreToLocation converts a core.Location to a GORM CaptureLocation. ID and
// CreatedAt are left for the database to assign.
func CoreToLocation(l core.Location) model.CaptureLocation {
	return model.CaptureLocation{
		Name:  l.Name,
		Floor: l.Floor,
		XPos:  l.Position.X,
		YPos:  l.Position.Y,
	}
}
