package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	ScheduleRecurring = "recurring"
	ScheduleOneTime   = "one_time"
)

// Schedule is a recurring or one-time definition of when a bus/driver/route
// combination should run. LastGeneratedDate is the idempotency cursor for
// daily trip generation: at most one trip per recurring schedule per
// calendar day.
type Schedule struct {
	gorm.Model

	OrganizationID uint `json:"organization_id" gorm:"index"`
	BusID          uint `json:"bus_id"`
	DriverID       uint `json:"driver_id"`
	RouteID        uint `json:"route_id"`

	// Boarding time of day, free text, parsed defensively.
	// Accepted: "H:MM", "HH:MM", optional trailing AM/PM (any case).
	BoardingTime string `json:"boarding_time" binding:"required"`

	// Lowercase full English weekday names ("monday".."sunday").
	// Matching is case-insensitive to tolerate legacy uppercase rows.
	OperatingDays pq.StringArray `json:"operating_days" gorm:"type:text[]"`

	Kind   string `json:"kind" gorm:"default:recurring"` // recurring | one_time
	Active bool   `json:"active" gorm:"default:true"`

	LastGeneratedDate *time.Time `json:"last_generated_date"`
}
