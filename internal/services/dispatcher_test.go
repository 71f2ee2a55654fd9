package services

import (
	"errors"
	"testing"

	"bus_dispatch/internal/models"
)

func TestSendDeduplicatesRecipients(t *testing.T) {
	notifs := &fakeNotificationStore{}
	pub := &fakePublisher{}
	d := &Dispatcher{Notifications: notifs, Users: &fakeUserStore{}, Pub: pub}

	sent, err := d.Send([]uint{101, 101, 0, 102}, models.NotifBroadcast, "t", "b", nil)
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if sent != 2 || len(notifs.created) != 2 {
		t.Errorf("sent = %d records = %d, want 2/2", sent, len(notifs.created))
	}
	if len(pub.published) != 2 {
		t.Errorf("pushes = %d, want 2", len(pub.published))
	}
}

func TestSendSurvivesPushFailure(t *testing.T) {
	notifs := &fakeNotificationStore{}
	pub := &fakePublisher{failFor: map[uint]bool{101: true}}
	d := &Dispatcher{Notifications: notifs, Users: &fakeUserStore{}, Pub: pub}

	sent, err := d.Send([]uint{101, 102}, models.NotifStudentBoarded, "t", "b", nil)
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if sent != 2 || len(notifs.created) != 2 {
		t.Errorf("durable records = %d (sent %d), want 2", len(notifs.created), sent)
	}
	if len(pub.published) != 1 || pub.published[0] != 102 {
		t.Errorf("published = %v, want only 102", pub.published)
	}
}

func TestSendWithoutPublisher(t *testing.T) {
	notifs := &fakeNotificationStore{}
	d := &Dispatcher{Notifications: notifs, Users: &fakeUserStore{}}

	if _, err := d.Send([]uint{101}, models.NotifBroadcast, "t", "b", nil); err != nil {
		t.Fatalf("Send without publisher: %v", err)
	}
}

func TestSendPropagatesStoreError(t *testing.T) {
	boom := errors.New("insert failed")
	d := &Dispatcher{Notifications: &fakeNotificationStore{err: boom}, Users: &fakeUserStore{}}

	if _, err := d.Send([]uint{101}, models.NotifBroadcast, "t", "b", nil); !errors.Is(err, boom) {
		t.Errorf("error = %v, want store error", err)
	}
}

type fakeDispatchMetrics struct {
	created int
}

func (m *fakeDispatchMetrics) NotificationsCreatedAdd(n int) { m.created += n }

func TestSendCountsDurableRecords(t *testing.T) {
	// The counter lives with the insert so every dispatch path is covered,
	// whatever triggered it.
	rec := &fakeDispatchMetrics{}
	d := &Dispatcher{Notifications: &fakeNotificationStore{}, Users: &fakeUserStore{}, Metrics: rec}

	if _, err := d.Send([]uint{101, 101, 102, 103}, models.NotifTripStarted, "t", "b", nil); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if rec.created != 3 {
		t.Errorf("counted = %d, want 3 deduplicated records", rec.created)
	}

	// A failed insert produces no records and must not count.
	boom := errors.New("insert failed")
	d = &Dispatcher{Notifications: &fakeNotificationStore{err: boom}, Users: &fakeUserStore{}, Metrics: rec}
	if _, err := d.Send([]uint{104}, models.NotifTripStarted, "t", "b", nil); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want store error", err)
	}
	if rec.created != 3 {
		t.Errorf("counted = %d after failed insert, want 3", rec.created)
	}
}

func TestBroadcastTargeting(t *testing.T) {
	users := &fakeUserStore{byRole: map[string][]uint{
		"admin":    {1},
		"driver":   {10, 11, 12},
		"guardian": {20, 21, 22, 23},
	}}

	cases := []struct {
		target string
		want   int
	}{
		{TargetDrivers, 3},
		{TargetGuardians, 4},
		{TargetAll, 8},
		{"", 8},
	}
	for _, c := range cases {
		notifs := &fakeNotificationStore{}
		d := &Dispatcher{Notifications: notifs, Users: users}
		sent, err := d.Broadcast(1, c.target, "Notice", "body")
		if err != nil {
			t.Errorf("Broadcast(%q) error: %v", c.target, err)
			continue
		}
		if sent != c.want {
			t.Errorf("Broadcast(%q) sent = %d, want %d", c.target, sent, c.want)
		}
		for _, n := range notifs.created {
			if n.Type != models.NotifBroadcast {
				t.Errorf("type = %s, want BROADCAST", n.Type)
			}
		}
	}
}

func TestBroadcastUnknownTarget(t *testing.T) {
	d := &Dispatcher{Notifications: &fakeNotificationStore{}, Users: &fakeUserStore{}}
	if _, err := d.Broadcast(1, "pigeons", "t", "b"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("error = %v, want ErrUnknownTarget", err)
	}
}

func TestEmergencyGoesToAdmins(t *testing.T) {
	users := &fakeUserStore{byRole: map[string][]uint{
		"admin":  {1, 2},
		"driver": {10},
	}}
	notifs := &fakeNotificationStore{}
	d := &Dispatcher{Notifications: notifs, Users: users}

	sent, err := d.Emergency(1, "Emergency alert", "breakdown", nil)
	if err != nil {
		t.Fatalf("Emergency error: %v", err)
	}
	if sent != 2 {
		t.Errorf("sent = %d, want 2 admins", sent)
	}
	for _, n := range notifs.created {
		if n.Type != models.NotifEmergencyAlert {
			t.Errorf("type = %s, want EMERGENCY_ALERT", n.Type)
		}
	}
}
