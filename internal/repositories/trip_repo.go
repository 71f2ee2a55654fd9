package repositories

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bus_dispatch/internal/geo"
	"bus_dispatch/internal/models"
)

var unfinished = []models.TripStatus{models.TripScheduled, models.TripOngoing}

type TripRepository struct {
	DB *gorm.DB
}

func (r TripRepository) Create(t *models.Trip) error {
	return r.DB.Create(t).Error
}

func (r TripRepository) ByID(id uint) (*models.Trip, error) {
	var trip models.Trip
	if err := r.DB.First(&trip, id).Error; err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r TripRepository) Save(t *models.Trip) error {
	return r.DB.Save(t).Error
}

func (r TripRepository) UnfinishedByDriver(driverID uint) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.DB.Where("driver_id = ? AND status IN ?", driverID, unfinished).Find(&trips).Error
	return trips, err
}

func (r TripRepository) ScheduledBySchedule(scheduleID uint) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.DB.Where("schedule_id = ? AND status = ?", scheduleID, models.TripScheduled).Find(&trips).Error
	return trips, err
}

func (r TripRepository) DeleteScheduledBySchedule(scheduleID uint) (int64, error) {
	res := r.DB.Where("schedule_id = ? AND status = ?", scheduleID, models.TripScheduled).
		Delete(&models.Trip{})
	return res.RowsAffected, res.Error
}

func (r TripRepository) CancelUnfinishedBySchedule(scheduleID uint) (int64, error) {
	res := r.DB.Model(&models.Trip{}).
		Where("schedule_id = ? AND status IN ?", scheduleID, unfinished).
		Update("status", models.TripCancelled)
	return res.RowsAffected, res.Error
}

func (r TripRepository) ScheduledByBusOnDate(busID uint, day time.Time) ([]models.Trip, error) {
	var trips []models.Trip
	err := r.DB.Where("bus_id = ? AND status = ? AND scheduled_start >= ? AND scheduled_start < ?",
		busID, models.TripScheduled, day, day.AddDate(0, 0, 1)).
		Find(&trips).Error
	return trips, err
}

// AppendPosition folds one fix into the trip inside a single transaction.
// The trip row is fetched FOR UPDATE so the distance increment is derived
// from the latest committed position; concurrent reports serialize on the
// row lock instead of both reading the same stale position and losing an
// increment.
func (r TripRepository) AppendPosition(tripID uint, loc *models.TripLocation) (*models.Trip, error) {
	var trip models.Trip
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&trip, tripID).Error; err != nil {
			return err
		}

		if trip.CurrentLat != nil && trip.CurrentLng != nil {
			trip.DistanceCovered += geo.HaversineKM(*trip.CurrentLat, *trip.CurrentLng, loc.Latitude, loc.Longitude)
		}
		recordedAt := loc.RecordedAt
		trip.CurrentLat = &loc.Latitude
		trip.CurrentLng = &loc.Longitude
		trip.LastLocationAt = &recordedAt

		if err := tx.Model(&models.Trip{}).Where("id = ?", tripID).Updates(map[string]interface{}{
			"current_lat":      trip.CurrentLat,
			"current_lng":      trip.CurrentLng,
			"last_location_at": trip.LastLocationAt,
			"distance_covered": trip.DistanceCovered,
		}).Error; err != nil {
			return err
		}
		return tx.Create(loc).Error
	})
	if err != nil {
		return nil, err
	}
	return &trip, nil
}
