// internal/models/organization.go
package models

import (
	"gorm.io/gorm"
)

// Organization is the tenant boundary: a school, company or other entity
// that runs scheduled transport for its members. Every core record is
// scoped to exactly one organization.
type Organization struct {
	gorm.Model
	Name    string `json:"name" binding:"required"`
	Kind    string `json:"kind"` // "school", "company", ...
	Email   string `gorm:"unique;not null" json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`

	// Home coordinate, used as the optional "Starting Point" anchor when
	// sequencing stops. Zero values mean no anchor is configured.
	HomeLat float64 `json:"home_lat"`
	HomeLng float64 `json:"home_lng"`

	Buses      []Bus       `gorm:"foreignKey:OrganizationID" json:"buses,omitempty"`
	Passengers []Passenger `gorm:"foreignKey:OrganizationID" json:"passengers,omitempty"`
}
