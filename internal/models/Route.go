package models

import (
	"gorm.io/gorm"
)

// Route represents a service path operated for an organization.
// A route has many ordered stops; buses are assigned to it via Bus.RouteID.
type Route struct {
	gorm.Model

	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	OrganizationID uint   `json:"organization_id" gorm:"index"`
	BusID          uint   `json:"bus_id" gorm:"index"`

	// Geometry stored as WKB (LINESTRING, SRID 4326).
	// Clients submit and receive GeoJSON; conversion happens at the API edge.
	Geometry []byte `gorm:"type:bytea" json:"-"`

	// Associations
	Stops []Stop `gorm:"foreignKey:RouteID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"stops,omitempty"`
}
