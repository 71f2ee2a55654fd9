// internal/models/driver.go
package models

import (
	"gorm.io/gorm"
)

type Driver struct {
	gorm.Model
	UserID         uint         `json:"user_id" gorm:"unique"` // Foreign key to User
	User           User         `gorm:"foreignKey:UserID"`
	Name           string       `json:"name"`
	Phone          string       `json:"phone"`
	LicenseNumber  string       `json:"license_number" gorm:"unique"`
	OrganizationID uint         `json:"organization_id" gorm:"index"`
	Organization   Organization `gorm:"foreignKey:OrganizationID"`
	// Email, Password and Role live on the User model.
}
