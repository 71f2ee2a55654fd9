package models

import (
	"time"

	"gorm.io/gorm"
)

// TripLocation is one immutable entry in a trip's position history.
type TripLocation struct {
	gorm.Model
	TripID     uint      `json:"trip_id" gorm:"index"`
	Trip       Trip      `gorm:"foreignKey:TripID" json:"-"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Accuracy   float64   `json:"accuracy"` // GPS accuracy in meters
	Speed      float64   `json:"speed"`    // Speed in km/h
	Heading    float64   `json:"heading"`  // Direction in degrees
	RecordedAt time.Time `json:"recorded_at"`
}
