package repositories

import (
	"gorm.io/gorm"

	"bus_dispatch/internal/models"
)

type UserRepository struct {
	DB *gorm.DB
}

func (r UserRepository) IDsByOrganizationAndRoles(orgID uint, roles ...string) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&models.User{}).
		Where("organization_id = ? AND role IN ?", orgID, roles).
		Pluck("id", &ids).Error
	return ids, err
}

type DriverRepository struct {
	DB *gorm.DB
}

func (r DriverRepository) UserIDByDriver(driverID uint) (uint, error) {
	var driver models.Driver
	if err := r.DB.First(&driver, driverID).Error; err != nil {
		return 0, err
	}
	return driver.UserID, nil
}

type OrganizationRepository struct {
	DB *gorm.DB
}

func (r OrganizationRepository) ByID(id uint) (*models.Organization, error) {
	var org models.Organization
	if err := r.DB.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}
