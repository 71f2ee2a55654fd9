package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_dispatch/internal/models"
)

// ScheduleService turns recurring and one-time schedules into concrete
// trips. Activation is intended to run once per organization per day but is
// safe to re-invoke: the conditional MarkGenerated update is the
// idempotency guard.
type ScheduleService struct {
	Schedules  ScheduleStore
	Trips      TripStore
	Passengers PassengerStore
	Drivers    DriverStore
	Dispatcher *Dispatcher
}

type ActivationResult struct {
	TripsCreated      int `json:"trips_created"`
	NotificationsSent int `json:"notifications_sent"`
	Skipped           int `json:"skipped"`
	Failed            int `json:"failed"`
}

// ActivateForDate creates one SCHEDULED trip per active schedule whose
// operating days include target's weekday and which has not yet generated a
// trip for that day. Notification failures are reported in the result but
// never block trip creation.
func (s *ScheduleService) ActivateForDate(orgID uint, target time.Time) (*ActivationResult, error) {
	schedules, err := s.Schedules.ActiveByOrganization(orgID)
	if err != nil {
		return nil, err
	}

	day := DayOf(target)
	weekday := WeekdayName(target)
	res := &ActivationResult{}

	for _, sch := range schedules {
		if !containsFold(sch.OperatingDays, weekday) {
			res.Skipped++
			continue
		}
		if sch.LastGeneratedDate != nil && DayOf(*sch.LastGeneratedDate).Equal(day) {
			res.Skipped++
			continue
		}

		start, err := CombineClock(sch.BoardingTime, target)
		if err != nil {
			logrus.WithError(err).WithField("schedule_id", sch.ID).Warn("activation: unparseable boarding time")
			res.Failed++
			continue
		}

		// Claim the day before creating anything so a concurrent or
		// retried activation cannot double-generate.
		claimed, err := s.Schedules.MarkGenerated(sch.ID, day)
		if err != nil {
			logrus.WithError(err).WithField("schedule_id", sch.ID).Error("activation: idempotency update failed")
			res.Failed++
			continue
		}
		if !claimed {
			res.Skipped++
			continue
		}

		trip := &models.Trip{
			ScheduleID:     &sch.ID,
			OrganizationID: sch.OrganizationID,
			BusID:          sch.BusID,
			DriverID:       sch.DriverID,
			RouteID:        sch.RouteID,
			Status:         models.TripScheduled,
			ScheduledStart: start,
		}
		if err := s.Trips.Create(trip); err != nil {
			logrus.WithError(err).WithField("schedule_id", sch.ID).Error("activation: trip create failed")
			res.Failed++
			continue
		}
		res.TripsCreated++

		sent, err := s.notifyTripCreated(&sch, trip)
		res.NotificationsSent += sent
		if err != nil {
			logrus.WithError(err).WithField("trip_id", trip.ID).Warn("activation: notification fan-out failed")
		}
	}

	return res, nil
}

func (s *ScheduleService) notifyTripCreated(sch *models.Schedule, trip *models.Trip) (int, error) {
	recipients := make([]uint, 0, 8)

	driverUserID, err := s.Drivers.UserIDByDriver(sch.DriverID)
	if err == nil {
		recipients = append(recipients, driverUserID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	passengers, err := s.Passengers.ActiveByBus(sch.BusID)
	if err != nil {
		return 0, err
	}
	for _, p := range passengers {
		recipients = append(recipients, p.GuardianID)
	}

	title := "Trip scheduled"
	body := fmt.Sprintf("Bus departs at %s on %s.",
		trip.ScheduledStart.Format("15:04"), trip.ScheduledStart.Format("Mon, 02 Jan"))
	return s.Dispatcher.Send(recipients, models.NotifTripStarted, title, body, map[string]string{
		"trip_id": fmt.Sprint(trip.ID),
	})
}

type RescheduleResult struct {
	TripsDeleted int64 `json:"trips_deleted"`
	TripsCreated int   `json:"trips_created"`
	TripsRetimed int   `json:"trips_retimed"`
}

// Reschedule moves a schedule to a new date. Recurring schedules drop their
// remaining SCHEDULED trips and regenerate a 7-day window starting at
// newDate; one-time schedules retime their single SCHEDULED trip in place
// (no-op when none exists). Trips already ongoing or finished are never
// touched.
func (s *ScheduleService) Reschedule(scheduleID uint, newDate time.Time) (*RescheduleResult, error) {
	sch, err := s.Schedules.ByID(scheduleID)
	if err != nil {
		return nil, err
	}

	res := &RescheduleResult{}

	if sch.Kind == models.ScheduleOneTime {
		trips, err := s.Trips.ScheduledBySchedule(sch.ID)
		if err != nil {
			return nil, err
		}
		if len(trips) == 0 {
			return res, nil
		}
		start, err := CombineClock(sch.BoardingTime, newDate)
		if err != nil {
			return nil, err
		}
		trip := trips[0]
		trip.ScheduledStart = start
		if err := s.Trips.Save(&trip); err != nil {
			return nil, err
		}
		res.TripsRetimed = 1
		return res, nil
	}

	deleted, err := s.Trips.DeleteScheduledBySchedule(sch.ID)
	if err != nil {
		return nil, err
	}
	res.TripsDeleted = deleted

	var lastDay time.Time
	for i := 0; i < 7; i++ {
		d := DayOf(newDate).AddDate(0, 0, i)
		if !containsFold(sch.OperatingDays, WeekdayName(d)) {
			continue
		}
		start, err := CombineClock(sch.BoardingTime, d)
		if err != nil {
			return nil, err
		}
		trip := &models.Trip{
			ScheduleID:     &sch.ID,
			OrganizationID: sch.OrganizationID,
			BusID:          sch.BusID,
			DriverID:       sch.DriverID,
			RouteID:        sch.RouteID,
			Status:         models.TripScheduled,
			ScheduledStart: start,
		}
		if err := s.Trips.Create(trip); err != nil {
			return nil, err
		}
		res.TripsCreated++
		lastDay = d
	}

	// Park the idempotency cursor at the end of the window so the nightly
	// activation run does not duplicate the pre-generated trips.
	if res.TripsCreated > 0 {
		if err := s.Schedules.SetLastGenerated(sch.ID, lastDay); err != nil {
			return nil, err
		}
	}
	return res, nil
}
