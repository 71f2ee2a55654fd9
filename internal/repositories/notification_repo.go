package repositories

import (
	"gorm.io/gorm"

	"bus_dispatch/internal/models"
)

type NotificationRepository struct {
	DB *gorm.DB
}

// CreateBatch is the durable phase of notification dispatch.
func (r NotificationRepository) CreateBatch(ns []models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return r.DB.Create(&ns).Error
}
