package services

import (
	"fmt"
	"time"

	"bus_dispatch/internal/models"
)

// TripService owns the trip state machine and the live-location ingest
// path.
type TripService struct {
	Trips TripStore
}

// Transition moves a trip to next, recording actual start/end timestamps.
// Only the transitions in the state table are permitted.
func (s *TripService) Transition(tripID uint, next models.TripStatus) (*models.Trip, error) {
	trip, err := s.Trips.ByID(tripID)
	if err != nil {
		return nil, err
	}
	if !trip.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, trip.Status, next)
	}

	now := time.Now()
	trip.Status = next
	switch next {
	case models.TripOngoing:
		trip.StartedAt = &now
	case models.TripCompleted:
		trip.EndedAt = &now
	}
	if err := s.Trips.Save(trip); err != nil {
		return nil, err
	}
	return trip, nil
}

func (s *TripService) Start(tripID uint) (*models.Trip, error) {
	return s.Transition(tripID, models.TripOngoing)
}

func (s *TripService) End(tripID uint) (*models.Trip, error) {
	return s.Transition(tripID, models.TripCompleted)
}

func (s *TripService) Cancel(tripID uint) (*models.Trip, error) {
	return s.Transition(tripID, models.TripCancelled)
}

// ActiveForDriver returns the driver's single trip in SCHEDULED or ONGOING
// state. More than one match is a data-integrity violation, not a pick.
func (s *TripService) ActiveForDriver(driverID uint) (*models.Trip, error) {
	trips, err := s.Trips.UnfinishedByDriver(driverID)
	if err != nil {
		return nil, err
	}
	switch len(trips) {
	case 0:
		return nil, ErrNoActiveTrip
	case 1:
		return &trips[0], nil
	default:
		return nil, fmt.Errorf("%w: driver %d has %d", ErrTripIntegrity, driverID, len(trips))
	}
}

// ScheduledByBusOnDate lists the SCHEDULED trips of a bus on a calendar
// day.
func (s *TripService) ScheduledByBusOnDate(busID uint, day time.Time) ([]models.Trip, error) {
	return s.Trips.ScheduledByBusOnDate(busID, DayOf(day))
}

// CancelForSchedule cancels every unfinished trip derived from a schedule.
// Completed trips are immutable and retained for history.
func (s *TripService) CancelForSchedule(scheduleID uint) (int64, error) {
	return s.Trips.CancelUnfinishedBySchedule(scheduleID)
}

// ReportPosition ingests one position fix for an ongoing trip. The store
// folds the fix in atomically: distance accumulation, position fields and
// the history append happen in one critical section per trip, so
// concurrent reports serialize instead of losing increments. No smoothing
// or accuracy-based rejection happens here.
func (s *TripService) ReportPosition(tripID uint, lat, lng, speed, heading, accuracy float64) (*models.Trip, error) {
	trip, err := s.Trips.ByID(tripID)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripOngoing {
		return nil, ErrNoActiveTrip
	}

	loc := &models.TripLocation{
		TripID:     trip.ID,
		Latitude:   lat,
		Longitude:  lng,
		Speed:      speed,
		Heading:    heading,
		Accuracy:   accuracy,
		RecordedAt: time.Now(),
	}
	return s.Trips.AppendPosition(trip.ID, loc)
}
