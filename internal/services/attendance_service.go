package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_dispatch/internal/models"
)

// Action is the closed set of attendance transitions. Unrecognized tags are
// rejected with ErrUnknownAction instead of silently no-op-ing.
type Action string

const (
	ActionBoard  Action = "boarded"
	ActionAbsent Action = "absent"
	ActionReset  Action = "reset"
	ActionDrop   Action = "dropped"
)

// ParseAction validates an action tag from the wire.
func ParseAction(raw string) (Action, error) {
	switch Action(raw) {
	case ActionBoard, ActionAbsent, ActionReset, ActionDrop:
		return Action(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
}

// AttendanceService drives the per-(trip, passenger) boarding state
// machine. All transitions are idempotent upserts on the composite key.
type AttendanceService struct {
	Attendance AttendanceStore
	Passengers PassengerStore
	Trips      *TripService
	Dispatcher *Dispatcher
}

type MarkResult struct {
	Applied int `json:"applied"`
	Skipped int `json:"skipped"`
}

// Mark applies one action to each passenger on the trip. Per-element
// failures (unknown passenger, passenger on another bus) are skipped, not
// fatal to the batch.
func (s *AttendanceService) Mark(trip *models.Trip, passengerIDs []uint, action Action, notes string) (*MarkResult, error) {
	res := &MarkResult{}
	for _, pid := range passengerIDs {
		if _, err := s.apply(trip, pid, action, notes); err != nil {
			if errors.Is(err, ErrUnknownAction) {
				return nil, err
			}
			logrus.WithError(err).WithFields(logrus.Fields{
				"trip_id":      trip.ID,
				"passenger_id": pid,
				"action":       action,
			}).Warn("attendance: skipping passenger")
			res.Skipped++
			continue
		}
		res.Applied++
	}
	return res, nil
}

// apply performs a single transition and emits its notification.
func (s *AttendanceService) apply(trip *models.Trip, passengerID uint, action Action, notes string) (*models.Attendance, error) {
	passenger, err := s.Passengers.ByID(passengerID)
	if err != nil {
		return nil, err
	}
	if passenger.BusID != trip.BusID {
		return nil, ErrPassengerNotOnBus
	}

	rec, err := s.Attendance.Get(trip.ID, passengerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if action == ActionReset {
			// Reset with no record is a no-op, no notification.
			return nil, nil
		}
		rec = &models.Attendance{TripID: trip.ID, PassengerID: passengerID, Status: models.AttendanceAwaiting}
	} else if err != nil {
		return nil, err
	}

	now := time.Now()
	notifType := ""

	switch action {
	case ActionBoard:
		rec.Status = models.AttendancePresent
		rec.BoardedAt = &now
		rec.BoardLat, rec.BoardLng = trip.CurrentLat, trip.CurrentLng
		notifType = models.NotifStudentBoarded
	case ActionAbsent:
		rec.Status = models.AttendanceAbsent
		rec.BoardedAt = nil
		rec.BoardLat, rec.BoardLng = nil, nil
		notifType = models.NotifStudentAbsent
	case ActionReset:
		rec.Status = models.AttendanceAwaiting
		rec.BoardedAt = nil
		rec.BoardLat, rec.BoardLng = nil, nil
	case ActionDrop:
		// Drop-off is independent of the boarding status field.
		rec.DroppedAt = &now
		rec.DropLat, rec.DropLng = trip.CurrentLat, trip.CurrentLng
		notifType = models.NotifStudentDropped
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if notes != "" {
		rec.Notes = notes
	}

	if err := s.Attendance.Upsert(rec); err != nil {
		return nil, err
	}

	if notifType != "" {
		title, body := attendanceMessage(notifType, passenger.Name)
		if _, err := s.Dispatcher.Send([]uint{passenger.GuardianID}, notifType, title, body, map[string]string{
			"trip_id":      fmt.Sprint(trip.ID),
			"passenger_id": fmt.Sprint(passenger.ID),
		}); err != nil {
			logrus.WithError(err).WithField("passenger_id", passenger.ID).Warn("attendance: guardian notification failed")
		}
	}
	return rec, nil
}

// VerifyByQRToken resolves a passenger from a boarding token scanned by the
// driver and marks them present on the driver's active trip.
func (s *AttendanceService) VerifyByQRToken(driverID uint, token string) (*models.Attendance, error) {
	passenger, err := s.Passengers.ByQRToken(token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	} else if err != nil {
		return nil, err
	}

	trip, err := s.Trips.ActiveForDriver(driverID)
	if err != nil {
		return nil, err
	}
	if passenger.BusID != trip.BusID {
		return nil, ErrPassengerNotOnBus
	}

	return s.apply(trip, passenger.ID, ActionBoard, "")
}

// ReportAbsence is the guardian-initiated path: every SCHEDULED trip of the
// passenger's bus on date gets an ABSENT record carrying the reason.
func (s *AttendanceService) ReportAbsence(passengerID uint, date time.Time, reason string) (int, error) {
	passenger, err := s.Passengers.ByID(passengerID)
	if err != nil {
		return 0, err
	}

	trips, err := s.Trips.ScheduledByBusOnDate(passenger.BusID, date)
	if err != nil {
		return 0, err
	}
	if len(trips) == 0 {
		return 0, ErrNoScheduledTrip
	}

	marked := 0
	for i := range trips {
		if _, err := s.apply(&trips[i], passengerID, ActionAbsent, reason); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"trip_id":      trips[i].ID,
				"passenger_id": passengerID,
			}).Warn("absence report: trip skipped")
			continue
		}
		marked++
	}
	return marked, nil
}

func attendanceMessage(notifType, passengerName string) (title, body string) {
	switch notifType {
	case models.NotifStudentBoarded:
		return "Boarded", passengerName + " has boarded the bus."
	case models.NotifStudentAbsent:
		return "Marked absent", passengerName + " was marked absent for this trip."
	case models.NotifStudentDropped:
		return "Dropped off", passengerName + " has been dropped off."
	}
	return "", ""
}
