package models

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Name           string `json:"name"`
	Email          string `json:"email" gorm:"unique"`
	Password       string `json:"-"`
	Phone          string `json:"phone"`
	Role           string `json:"role"` // "admin", "driver", "guardian"
	OrganizationID uint   `json:"organization_id" gorm:"index"`

	// Actor-specific relations
	Driver *Driver `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"driver,omitempty"`
}
