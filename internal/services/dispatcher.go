package services

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"

	"bus_dispatch/internal/models"
)

// Broadcast targets.
const (
	TargetAll       = "all"
	TargetDrivers   = "drivers"
	TargetGuardians = "guardians"
)

// DispatchMetrics is implemented by the metrics collector; a nil field
// disables instrumentation.
type DispatchMetrics interface {
	NotificationsCreatedAdd(n int)
}

// Dispatcher fans one event out into per-recipient notifications. Dispatch
// is two-phase: a durable batch insert, then a best-effort push per
// recipient. A failed push is logged and counted but never rolls back the
// insert, and recipients fail independently.
type Dispatcher struct {
	Notifications NotificationStore
	Users         UserStore
	Pub           Publisher       // optional; nil disables push
	Metrics       DispatchMetrics // optional
}

type pushPayload struct {
	ID    uint              `json:"id"`
	Type  string            `json:"type"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// Send writes one notification per recipient and pushes each in its own
// goroutine. It returns the number of durable records created.
func (d *Dispatcher) Send(recipients []uint, typ, title, body string, meta map[string]string) (int, error) {
	recipients = dedupe(recipients)
	if len(recipients) == 0 {
		return 0, nil
	}

	var metaJSON []byte
	if len(meta) > 0 {
		metaJSON, _ = json.Marshal(meta)
	}

	notifs := make([]models.Notification, 0, len(recipients))
	for _, uid := range recipients {
		notifs = append(notifs, models.Notification{
			UserID: uid,
			Type:   typ,
			Title:  title,
			Body:   body,
			Meta:   metaJSON,
		})
	}
	if err := d.Notifications.CreateBatch(notifs); err != nil {
		return 0, err
	}
	// Counted here so every dispatch path is covered, not just the
	// admin-facing ones.
	if d.Metrics != nil {
		d.Metrics.NotificationsCreatedAdd(len(notifs))
	}

	if d.Pub != nil {
		var wg sync.WaitGroup
		for i := range notifs {
			n := notifs[i]
			wg.Add(1)
			go func() {
				defer wg.Done()
				payload, err := json.Marshal(pushPayload{
					ID: n.ID, Type: n.Type, Title: n.Title, Body: n.Body, Meta: meta,
				})
				if err == nil {
					err = d.Pub.PublishNotification(n.UserID, payload)
				}
				if err != nil {
					logrus.WithError(err).WithFields(logrus.Fields{
						"user_id": n.UserID,
						"type":    n.Type,
					}).Warn("push delivery failed; durable notification kept")
				}
			}()
		}
		wg.Wait()
	}

	return len(notifs), nil
}

// Broadcast sends an admin announcement to a selectable slice of the
// organization's users.
func (d *Dispatcher) Broadcast(orgID uint, target, title, body string) (int, error) {
	var roles []string
	switch target {
	case TargetDrivers:
		roles = []string{"driver"}
	case TargetGuardians:
		roles = []string{"guardian"}
	case TargetAll, "":
		roles = []string{"admin", "driver", "guardian"}
	default:
		return 0, ErrUnknownTarget
	}

	ids, err := d.Users.IDsByOrganizationAndRoles(orgID, roles...)
	if err != nil {
		return 0, err
	}
	return d.Send(ids, models.NotifBroadcast, title, body, nil)
}

// Emergency alerts every admin of the organization.
func (d *Dispatcher) Emergency(orgID uint, title, body string, meta map[string]string) (int, error) {
	ids, err := d.Users.IDsByOrganizationAndRoles(orgID, "admin")
	if err != nil {
		return 0, err
	}
	return d.Send(ids, models.NotifEmergencyAlert, title, body, meta)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
