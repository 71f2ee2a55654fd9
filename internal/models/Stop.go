package models

import (
	"gorm.io/gorm"
)

// Stop is a pickup or drop-off point along a route. Seq is 1-based and
// dense within a route. A stop with no passenger reference is an
// informational anchor (for example the organization's "Starting Point")
// and never produces attendance records.
type Stop struct {
	gorm.Model

	Name    string  `json:"name" binding:"required"`
	Address string  `json:"address"`
	Seq     int     `json:"seq" binding:"required"`
	Lat     float64 `json:"lat" binding:"required"`
	Lng     float64 `json:"lng" binding:"required"`

	// Estimated arrival as a clock value, "HH:MM".
	ETA string `json:"eta"`

	RouteID     uint  `json:"route_id" gorm:"index"`
	PassengerID *uint `json:"passenger_id"`
}
