package services

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"bus_dispatch/internal/geo"
	"bus_dispatch/internal/models"
)

// In-memory store fakes. They mirror the repository contracts, including
// gorm.ErrRecordNotFound on misses and the conditional-update semantics of
// MarkGenerated.

type fakeScheduleStore struct {
	schedules map[uint]*models.Schedule
}

func newFakeScheduleStore(schedules ...*models.Schedule) *fakeScheduleStore {
	s := &fakeScheduleStore{schedules: make(map[uint]*models.Schedule)}
	for _, sch := range schedules {
		s.schedules[sch.ID] = sch
	}
	return s
}

func (s *fakeScheduleStore) ActiveByOrganization(orgID uint) ([]models.Schedule, error) {
	var out []models.Schedule
	for _, sch := range s.schedules {
		if sch.OrganizationID == orgID && sch.Active {
			out = append(out, *sch)
		}
	}
	return out, nil
}

func (s *fakeScheduleStore) ByID(id uint) (*models.Schedule, error) {
	sch, ok := s.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sch
	return &cp, nil
}

func (s *fakeScheduleStore) MarkGenerated(scheduleID uint, day time.Time) (bool, error) {
	sch, ok := s.schedules[scheduleID]
	if !ok {
		return false, nil
	}
	if sch.LastGeneratedDate != nil && !sch.LastGeneratedDate.Before(day) {
		return false, nil
	}
	d := day
	sch.LastGeneratedDate = &d
	return true, nil
}

func (s *fakeScheduleStore) SetLastGenerated(scheduleID uint, day time.Time) error {
	sch, ok := s.schedules[scheduleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d := day
	sch.LastGeneratedDate = &d
	return nil
}

type fakeTripStore struct {
	mu        sync.Mutex
	trips     map[uint]*models.Trip
	nextID    uint
	createErr error
}

func newFakeTripStore(trips ...*models.Trip) *fakeTripStore {
	s := &fakeTripStore{trips: make(map[uint]*models.Trip), nextID: 1}
	for _, t := range trips {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
		s.trips[t.ID] = t
	}
	return s
}

func (s *fakeTripStore) Create(t *models.Trip) error {
	if s.createErr != nil {
		return s.createErr
	}
	t.ID = s.nextID
	s.nextID++
	cp := *t
	s.trips[t.ID] = &cp
	return nil
}

func (s *fakeTripStore) ByID(id uint) (*models.Trip, error) {
	t, ok := s.trips[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTripStore) Save(t *models.Trip) error {
	if _, ok := s.trips[t.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *t
	s.trips[t.ID] = &cp
	return nil
}

func (s *fakeTripStore) UnfinishedByDriver(driverID uint) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range s.trips {
		if t.DriverID == driverID && (t.Status == models.TripScheduled || t.Status == models.TripOngoing) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeTripStore) ScheduledBySchedule(scheduleID uint) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range s.trips {
		if t.ScheduleID != nil && *t.ScheduleID == scheduleID && t.Status == models.TripScheduled {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeTripStore) DeleteScheduledBySchedule(scheduleID uint) (int64, error) {
	var n int64
	for id, t := range s.trips {
		if t.ScheduleID != nil && *t.ScheduleID == scheduleID && t.Status == models.TripScheduled {
			delete(s.trips, id)
			n++
		}
	}
	return n, nil
}

func (s *fakeTripStore) CancelUnfinishedBySchedule(scheduleID uint) (int64, error) {
	var n int64
	for _, t := range s.trips {
		if t.ScheduleID != nil && *t.ScheduleID == scheduleID &&
			(t.Status == models.TripScheduled || t.Status == models.TripOngoing) {
			t.Status = models.TripCancelled
			n++
		}
	}
	return n, nil
}

func (s *fakeTripStore) ScheduledByBusOnDate(busID uint, day time.Time) ([]models.Trip, error) {
	var out []models.Trip
	for _, t := range s.trips {
		if t.BusID == busID && t.Status == models.TripScheduled &&
			DayOf(t.ScheduledStart).Equal(day) {
			out = append(out, *t)
		}
	}
	return out, nil
}

// AppendPosition mirrors the repository's row-locked transaction: the
// mutex is the critical section, and the distance delta is derived from
// the stored position, not a caller-supplied snapshot.
func (s *fakeTripStore) AppendPosition(tripID uint, loc *models.TripLocation) (*models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.trips[tripID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if stored.CurrentLat != nil && stored.CurrentLng != nil {
		stored.DistanceCovered += geo.HaversineKM(*stored.CurrentLat, *stored.CurrentLng, loc.Latitude, loc.Longitude)
	}
	recordedAt := loc.RecordedAt
	stored.CurrentLat = &loc.Latitude
	stored.CurrentLng = &loc.Longitude
	stored.LastLocationAt = &recordedAt
	cp := *stored
	return &cp, nil
}

type fakePassengerStore struct {
	passengers map[uint]*models.Passenger
}

func newFakePassengerStore(passengers ...*models.Passenger) *fakePassengerStore {
	s := &fakePassengerStore{passengers: make(map[uint]*models.Passenger)}
	for _, p := range passengers {
		s.passengers[p.ID] = p
	}
	return s
}

func (s *fakePassengerStore) ActiveByBus(busID uint) ([]models.Passenger, error) {
	var out []models.Passenger
	for _, p := range s.passengers {
		if p.BusID == busID && p.Active {
			out = append(out, *p)
		}
	}
	// Callers rely on a stable name order, matching the repository query.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Name < out[i].Name {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (s *fakePassengerStore) ByID(id uint) (*models.Passenger, error) {
	p, ok := s.passengers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakePassengerStore) ByQRToken(token string) (*models.Passenger, error) {
	for _, p := range s.passengers {
		if p.QRToken == token {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type attendanceKey struct {
	tripID      uint
	passengerID uint
}

type fakeAttendanceStore struct {
	records map[attendanceKey]*models.Attendance
	nextID  uint
}

func newFakeAttendanceStore() *fakeAttendanceStore {
	return &fakeAttendanceStore{records: make(map[attendanceKey]*models.Attendance), nextID: 1}
}

func (s *fakeAttendanceStore) Get(tripID, passengerID uint) (*models.Attendance, error) {
	rec, ok := s.records[attendanceKey{tripID, passengerID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *fakeAttendanceStore) Upsert(a *models.Attendance) error {
	key := attendanceKey{a.TripID, a.PassengerID}
	if existing, ok := s.records[key]; ok {
		a.ID = existing.ID
	} else {
		a.ID = s.nextID
		s.nextID++
	}
	cp := *a
	s.records[key] = &cp
	return nil
}

type fakeDriverStore struct {
	userIDs map[uint]uint // driver ID -> user ID
}

func (s *fakeDriverStore) UserIDByDriver(driverID uint) (uint, error) {
	uid, ok := s.userIDs[driverID]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return uid, nil
}

type fakeUserStore struct {
	byRole map[string][]uint // role -> user IDs, single-org fixtures
}

func (s *fakeUserStore) IDsByOrganizationAndRoles(orgID uint, roles ...string) ([]uint, error) {
	var out []uint
	for _, role := range roles {
		out = append(out, s.byRole[role]...)
	}
	return out, nil
}

type fakeOrgStore struct {
	org *models.Organization
}

func (s *fakeOrgStore) ByID(id uint) (*models.Organization, error) {
	if s.org == nil || s.org.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s.org
	return &cp, nil
}

type fakeNotificationStore struct {
	created []models.Notification
	nextID  uint
	err     error
}

func (s *fakeNotificationStore) CreateBatch(ns []models.Notification) error {
	if s.err != nil {
		return s.err
	}
	for i := range ns {
		s.nextID++
		ns[i].ID = s.nextID
	}
	s.created = append(s.created, ns...)
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []uint
	failFor   map[uint]bool
}

func (p *fakePublisher) PublishNotification(userID uint, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failFor[userID] {
		return errors.New("publish refused")
	}
	p.published = append(p.published, userID)
	return nil
}
