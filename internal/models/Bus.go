// internal/models/bus.go
package models

import (
	"gorm.io/gorm"
)

type Bus struct {
	gorm.Model
	NumberPlate    string `json:"number_plate" gorm:"unique"`
	Capacity       int    `json:"capacity"`
	OrganizationID uint   `json:"organization_id" gorm:"index"`
	// A driver holds at most one bus assignment at a time; the unique index
	// makes the "first bus" lookup unambiguous. Nullable so any number of
	// buses can sit unassigned (NULLs never collide in the index).
	DriverID  *uint `json:"driver_id" gorm:"uniqueIndex"`
	RouteID   uint  `json:"route_id"`
	InService bool  `json:"in_service" gorm:"default:true"`
}
