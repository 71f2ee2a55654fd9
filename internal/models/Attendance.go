package models

import (
	"time"

	"gorm.io/gorm"
)

type AttendanceStatus string

const (
	AttendanceAwaiting AttendanceStatus = "AWAITING"
	AttendancePresent  AttendanceStatus = "PRESENT"
	AttendanceAbsent   AttendanceStatus = "ABSENT"
)

// Attendance records boarding and drop-off for one passenger on one trip.
// The (trip, passenger) pair is unique; all writes go through an upsert.
// Drop-off fields are independent of the boarding status.
type Attendance struct {
	gorm.Model

	TripID      uint      `json:"trip_id" gorm:"uniqueIndex:idx_trip_passenger"`
	PassengerID uint      `json:"passenger_id" gorm:"uniqueIndex:idx_trip_passenger;index"`
	Passenger   Passenger `gorm:"foreignKey:PassengerID" json:"passenger,omitempty"`

	Status AttendanceStatus `json:"status" gorm:"type:varchar(16);default:AWAITING"`

	BoardedAt *time.Time `json:"boarded_at"`
	BoardLat  *float64   `json:"board_lat"`
	BoardLng  *float64   `json:"board_lng"`

	DroppedAt *time.Time `json:"dropped_at"`
	DropLat   *float64   `json:"drop_lat"`
	DropLng   *float64   `json:"drop_lng"`

	Notes string `json:"notes"`
}
