package models

import (
	"gorm.io/gorm"
)

// Notification type tags.
const (
	NotifTripStarted    = "TRIP_STARTED"
	NotifStudentBoarded = "STUDENT_BOARDED"
	NotifStudentAbsent  = "STUDENT_ABSENT"
	NotifStudentDropped = "STUDENT_DROPPED"
	NotifBroadcast      = "BROADCAST"
	NotifEmergencyAlert = "EMERGENCY_ALERT"
)

// Notification is a fire-and-forget message addressed to one user.
// Only the read flag is mutable after creation, by the recipient.
type Notification struct {
	gorm.Model
	UserID uint   `json:"user_id" gorm:"index"`
	Type   string `json:"type" gorm:"type:varchar(32);index"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	Meta   []byte `json:"meta,omitempty" gorm:"type:jsonb"`
	Read   bool   `json:"read" gorm:"default:false"`
}
