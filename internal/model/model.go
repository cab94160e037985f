package model

import (
	"time"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&CaptureLocation{},
}

////////////////////////
// CAPTURE MODELS
////////////////////////

// CaptureLocation is a surveyed point on a floor plan where fingerprints are captured.
// Column names follow the schema the editor has always used.
type CaptureLocation struct {
	ID        uint      `json:"id" gorm:"primaryKey;column:capture_location_id"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
	Name      string    `json:"name" gorm:"column:capture_location_name;size:127;not null;uniqueIndex:idx_capture_location_floor_name"`
	Floor     int       `json:"floor" gorm:"column:capture_location_floor;not null;uniqueIndex:idx_capture_location_floor_name"`
	XPos      int       `json:"xPos" gorm:"column:capture_location_x_pos"`
	YPos      int       `json:"yPos" gorm:"column:capture_location_y_pos"`
}

func (*CaptureLocation) TableName() string {
	return "capture_locations"
}
