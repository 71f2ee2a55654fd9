// internal/models/passenger.go
package models

import (
	"gorm.io/gorm"
)

// Passenger is a transported person (a student, an employee...). The
// guardian user receives notifications and may report absences on the
// passenger's behalf.
type Passenger struct {
	gorm.Model
	Name           string `json:"name" binding:"required"`
	OrganizationID uint   `json:"organization_id" gorm:"index"`
	BusID          uint   `json:"bus_id" gorm:"index"`
	GuardianID     uint   `json:"guardian_id" gorm:"index"` // Foreign key to User
	Guardian       User   `gorm:"foreignKey:GuardianID" json:"guardian,omitempty"`

	PickupAddress string  `json:"pickup_address"`
	PickupLat     float64 `json:"pickup_lat"`
	PickupLng     float64 `json:"pickup_lng"`

	// Opaque boarding token, printed as a QR code on the passenger's pass.
	QRToken string `json:"qr_token" gorm:"uniqueIndex"`
	Active  bool   `json:"active" gorm:"default:true"`
}
