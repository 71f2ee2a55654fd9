package services

import (
	"testing"
	"time"

	"bus_dispatch/internal/models"

	"gorm.io/gorm"
)

// 2025-03-10 is a Monday.
var monday = time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local)

func newScheduleFixture(schedules ...*models.Schedule) (*ScheduleService, *fakeTripStore, *fakeNotificationStore) {
	trips := newFakeTripStore()
	notifs := &fakeNotificationStore{}
	svc := &ScheduleService{
		Schedules: newFakeScheduleStore(schedules...),
		Trips:     trips,
		Passengers: newFakePassengerStore(
			&models.Passenger{Model: gorm.Model{ID: 1}, Name: "Amina", BusID: 5, GuardianID: 101, Active: true},
			&models.Passenger{Model: gorm.Model{ID: 2}, Name: "Brian", BusID: 5, GuardianID: 102, Active: true},
		),
		Drivers:    &fakeDriverStore{userIDs: map[uint]uint{7: 70}},
		Dispatcher: &Dispatcher{Notifications: notifs, Users: &fakeUserStore{}},
	}
	return svc, trips, notifs
}

func recurringSchedule(id uint, days ...string) *models.Schedule {
	return &models.Schedule{
		Model:          gorm.Model{ID: id},
		OrganizationID: 1,
		BusID:          5,
		DriverID:       7,
		RouteID:        3,
		BoardingTime:   "7:05 AM",
		OperatingDays:  days,
		Kind:           models.ScheduleRecurring,
		Active:         true,
	}
}

func TestActivateForDateCreatesTrip(t *testing.T) {
	svc, trips, notifs := newScheduleFixture(recurringSchedule(1, "monday", "wednesday"))

	res, err := svc.ActivateForDate(1, monday)
	if err != nil {
		t.Fatalf("ActivateForDate error: %v", err)
	}
	if res.TripsCreated != 1 {
		t.Fatalf("TripsCreated = %d, want 1", res.TripsCreated)
	}

	trip, err := trips.ByID(1)
	if err != nil {
		t.Fatalf("trip lookup: %v", err)
	}
	if trip.Status != models.TripScheduled {
		t.Errorf("status = %s, want SCHEDULED", trip.Status)
	}
	wantStart := time.Date(2025, 3, 10, 7, 5, 0, 0, time.Local)
	if !trip.ScheduledStart.Equal(wantStart) {
		t.Errorf("scheduled start = %v, want %v", trip.ScheduledStart, wantStart)
	}

	// Driver + both guardians get the trip-created notification.
	if res.NotificationsSent != 3 || len(notifs.created) != 3 {
		t.Errorf("notifications = %d (result %d), want 3", len(notifs.created), res.NotificationsSent)
	}
}

func TestActivateForDateIsIdempotent(t *testing.T) {
	svc, trips, _ := newScheduleFixture(recurringSchedule(1, "monday"))

	if _, err := svc.ActivateForDate(1, monday); err != nil {
		t.Fatalf("first activation: %v", err)
	}
	res, err := svc.ActivateForDate(1, monday)
	if err != nil {
		t.Fatalf("second activation: %v", err)
	}
	if res.TripsCreated != 0 || res.Skipped != 1 {
		t.Errorf("second run created=%d skipped=%d, want 0/1", res.TripsCreated, res.Skipped)
	}
	if len(trips.trips) != 1 {
		t.Errorf("trip count = %d, want 1", len(trips.trips))
	}
}

func TestActivateForDateHonorsOperatingDays(t *testing.T) {
	svc, trips, _ := newScheduleFixture(recurringSchedule(1, "tuesday"))

	res, err := svc.ActivateForDate(1, monday)
	if err != nil {
		t.Fatalf("ActivateForDate error: %v", err)
	}
	if res.TripsCreated != 0 || res.Skipped != 1 {
		t.Errorf("created=%d skipped=%d, want 0/1", res.TripsCreated, res.Skipped)
	}
	if len(trips.trips) != 0 {
		t.Errorf("trip count = %d, want 0", len(trips.trips))
	}
}

func TestActivateForDateToleratesLegacyUppercaseDays(t *testing.T) {
	svc, _, _ := newScheduleFixture(recurringSchedule(1, "MONDAY"))

	res, err := svc.ActivateForDate(1, monday)
	if err != nil {
		t.Fatalf("ActivateForDate error: %v", err)
	}
	if res.TripsCreated != 1 {
		t.Errorf("TripsCreated = %d, want 1", res.TripsCreated)
	}
}

func TestActivateForDateBadBoardingTimeDoesNotBurnTheDay(t *testing.T) {
	bad := recurringSchedule(1, "monday")
	bad.BoardingTime = "not a time"
	svc, _, _ := newScheduleFixture(bad)

	res, err := svc.ActivateForDate(1, monday)
	if err != nil {
		t.Fatalf("ActivateForDate error: %v", err)
	}
	if res.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", res.Failed)
	}

	// Fixing the time and re-running must still generate today's trip.
	bad.BoardingTime = "7:05"
	res, err = svc.ActivateForDate(1, monday)
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if res.TripsCreated != 1 {
		t.Errorf("retry TripsCreated = %d, want 1", res.TripsCreated)
	}
}

func TestRescheduleOneTimeRetimesInPlace(t *testing.T) {
	sch := recurringSchedule(1, "monday")
	sch.Kind = models.ScheduleOneTime
	svc, trips, _ := newScheduleFixture(sch)

	schID := sch.ID
	existing := &models.Trip{
		Model:          gorm.Model{ID: 9},
		ScheduleID:     &schID,
		Status:         models.TripScheduled,
		ScheduledStart: monday,
	}
	trips.trips[existing.ID] = existing
	trips.nextID = 10

	newDate := monday.AddDate(0, 0, 2)
	res, err := svc.Reschedule(1, newDate)
	if err != nil {
		t.Fatalf("Reschedule error: %v", err)
	}
	if res.TripsRetimed != 1 || res.TripsCreated != 0 || res.TripsDeleted != 0 {
		t.Fatalf("result = %+v, want 1 retimed only", res)
	}

	moved, _ := trips.ByID(9)
	want := time.Date(2025, 3, 12, 7, 5, 0, 0, time.Local)
	if !moved.ScheduledStart.Equal(want) {
		t.Errorf("scheduled start = %v, want %v", moved.ScheduledStart, want)
	}
}

func TestRescheduleRecurringRegeneratesWindow(t *testing.T) {
	sch := recurringSchedule(1, "monday", "wednesday")
	svc, trips, _ := newScheduleFixture(sch)

	// A stale pending trip plus an ongoing one that must survive.
	schID := sch.ID
	trips.trips[20] = &models.Trip{
		Model: gorm.Model{ID: 20}, ScheduleID: &schID,
		Status: models.TripScheduled, ScheduledStart: monday,
	}
	trips.trips[21] = &models.Trip{
		Model: gorm.Model{ID: 21}, ScheduleID: &schID,
		Status: models.TripOngoing, ScheduledStart: monday,
	}
	trips.nextID = 22

	res, err := svc.Reschedule(1, monday.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("Reschedule error: %v", err)
	}
	if res.TripsDeleted != 1 {
		t.Errorf("TripsDeleted = %d, want 1", res.TripsDeleted)
	}
	// Window 2025-03-17..23 contains one Monday and one Wednesday.
	if res.TripsCreated != 2 {
		t.Errorf("TripsCreated = %d, want 2", res.TripsCreated)
	}
	if _, err := trips.ByID(21); err != nil {
		t.Errorf("ongoing trip was touched: %v", err)
	}
	if _, err := trips.ByID(20); err == nil {
		t.Errorf("stale scheduled trip survived")
	}

	// The cursor must be parked so the nightly run cannot duplicate.
	stored, _ := svc.Schedules.ByID(1)
	if stored.LastGeneratedDate == nil {
		t.Fatalf("LastGeneratedDate not set")
	}
	wantCursor := DayOf(monday.AddDate(0, 0, 9)) // the Wednesday
	if !DayOf(*stored.LastGeneratedDate).Equal(wantCursor) {
		t.Errorf("cursor = %v, want %v", stored.LastGeneratedDate, wantCursor)
	}
}
