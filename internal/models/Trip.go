package models

import (
	"time"

	"gorm.io/gorm"
)

type TripStatus string

const (
	TripScheduled TripStatus = "SCHEDULED"
	TripOngoing   TripStatus = "ONGOING"
	TripCompleted TripStatus = "COMPLETED"
	TripCancelled TripStatus = "CANCELLED"
)

// tripTransitions is the closed set of permitted status changes.
// Everything else is rejected with ErrInvalidTransition by the trip service.
var tripTransitions = map[TripStatus][]TripStatus{
	TripScheduled: {TripOngoing, TripCancelled},
	TripOngoing:   {TripCompleted, TripCancelled},
}

// CanTransition reports whether s may move to next.
func (s TripStatus) CanTransition(next TripStatus) bool {
	for _, t := range tripTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s TripStatus) Terminal() bool {
	return len(tripTransitions[s]) == 0
}

// Trip is one dated, dispatched occurrence of a schedule (or an ad-hoc
// dispatch when ScheduleID is nil). It is the unit of concurrency for
// location updates.
type Trip struct {
	gorm.Model

	ScheduleID     *uint      `json:"schedule_id" gorm:"index"`
	OrganizationID uint       `json:"organization_id" gorm:"index"`
	BusID          uint       `json:"bus_id" gorm:"index"`
	DriverID       uint       `json:"driver_id" gorm:"index"`
	RouteID        uint       `json:"route_id"`
	Status         TripStatus `json:"status" gorm:"type:varchar(16);default:SCHEDULED;index"`

	ScheduledStart time.Time  `json:"scheduled_start"`
	StartedAt      *time.Time `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at"`

	// Live position, nil until the first fix arrives.
	CurrentLat      *float64   `json:"current_lat"`
	CurrentLng      *float64   `json:"current_lng"`
	LastLocationAt  *time.Time `json:"last_location_at"`
	DistanceCovered float64    `json:"distance_covered_km"` // running total, km
}
