package services

import (
	"time"

	"bus_dispatch/internal/models"
)

// Store interfaces the engine depends on. The GORM implementations live in
// internal/repositories; tests substitute in-memory fakes. Lookups return
// gorm.ErrRecordNotFound when no row matches.

type ScheduleStore interface {
	ActiveByOrganization(orgID uint) ([]models.Schedule, error)
	ByID(id uint) (*models.Schedule, error)
	// MarkGenerated advances the schedule's last-generated date to day with
	// a single conditional update. It reports false when another activation
	// already claimed that day (or a later one).
	MarkGenerated(scheduleID uint, day time.Time) (bool, error)
	SetLastGenerated(scheduleID uint, day time.Time) error
}

type TripStore interface {
	Create(t *models.Trip) error
	ByID(id uint) (*models.Trip, error)
	Save(t *models.Trip) error
	UnfinishedByDriver(driverID uint) ([]models.Trip, error)
	ScheduledBySchedule(scheduleID uint) ([]models.Trip, error)
	DeleteScheduledBySchedule(scheduleID uint) (int64, error)
	CancelUnfinishedBySchedule(scheduleID uint) (int64, error)
	ScheduledByBusOnDate(busID uint, day time.Time) ([]models.Trip, error)
	// AppendPosition folds one fix into the trip: the previous position is
	// read under the same critical section that writes the distance
	// increment, the position fields and the history entry, so concurrent
	// reports cannot lose an increment.
	AppendPosition(tripID uint, loc *models.TripLocation) (*models.Trip, error)
}

type PassengerStore interface {
	ActiveByBus(busID uint) ([]models.Passenger, error)
	ByID(id uint) (*models.Passenger, error)
	ByQRToken(token string) (*models.Passenger, error)
}

type AttendanceStore interface {
	Get(tripID, passengerID uint) (*models.Attendance, error)
	// Upsert creates or updates the record keyed by (trip, passenger).
	Upsert(a *models.Attendance) error
}

type DriverStore interface {
	UserIDByDriver(driverID uint) (uint, error)
}

type UserStore interface {
	IDsByOrganizationAndRoles(orgID uint, roles ...string) ([]uint, error)
}

type OrganizationStore interface {
	ByID(id uint) (*models.Organization, error)
}

type NotificationStore interface {
	CreateBatch(ns []models.Notification) error
}

// Publisher is the real-time push sink. Delivery is best effort; a failed
// publish never affects the durable notification record.
type Publisher interface {
	PublishNotification(userID uint, payload []byte) error
}
