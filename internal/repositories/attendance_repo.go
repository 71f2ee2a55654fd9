package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bus_dispatch/internal/models"
)

type AttendanceRepository struct {
	DB *gorm.DB
}

func (r AttendanceRepository) Get(tripID, passengerID uint) (*models.Attendance, error) {
	var a models.Attendance
	if err := r.DB.Where("trip_id = ? AND passenger_id = ?", tripID, passengerID).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Upsert creates or updates on the (trip_id, passenger_id) unique key in a
// single statement, so two concurrent marks for the same passenger cannot
// race into duplicate rows.
func (r AttendanceRepository) Upsert(a *models.Attendance) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "trip_id"}, {Name: "passenger_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "boarded_at", "board_lat", "board_lng",
			"dropped_at", "drop_lat", "drop_lng", "notes", "updated_at",
		}),
	}).Create(a).Error
}
