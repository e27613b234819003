package entity

import (
	"time"
)

// Crop is a planting record owned by exactly one user. Records are only
// visible through owner-scoped queries.
//
// PlantingDate is kept as the submitted YYYY-MM-DD string; Status is a
// free-form category ("planted", "harvested", ...).
type Crop struct {
	ID           int64
	UserID       int64
	Name         string
	PlantingDate string
	Status       string
	CreatedAt    time.Time
}
