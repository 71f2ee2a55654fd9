package repositories

import (
	"time"

	"gorm.io/gorm"

	"bus_dispatch/internal/models"
)

type ScheduleRepository struct {
	DB *gorm.DB
}

func (r ScheduleRepository) ActiveByOrganization(orgID uint) ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := r.DB.Where("organization_id = ? AND active = ?", orgID, true).Find(&schedules).Error
	return schedules, err
}

func (r ScheduleRepository) ByID(id uint) (*models.Schedule, error) {
	var sch models.Schedule
	if err := r.DB.First(&sch, id).Error; err != nil {
		return nil, err
	}
	return &sch, nil
}

// MarkGenerated is the activation idempotency guard: a single conditional
// update, atomic under concurrent activation runs. RowsAffected == 0 means
// another run already claimed the day.
func (r ScheduleRepository) MarkGenerated(scheduleID uint, day time.Time) (bool, error) {
	res := r.DB.Model(&models.Schedule{}).
		Where("id = ? AND (last_generated_date IS NULL OR last_generated_date < ?)", scheduleID, day).
		Update("last_generated_date", day)
	return res.RowsAffected > 0, res.Error
}

func (r ScheduleRepository) SetLastGenerated(scheduleID uint, day time.Time) error {
	return r.DB.Model(&models.Schedule{}).
		Where("id = ?", scheduleID).
		Update("last_generated_date", day).Error
}
