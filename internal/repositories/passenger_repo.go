package repositories

import (
	"gorm.io/gorm"

	"bus_dispatch/internal/models"
)

type PassengerRepository struct {
	DB *gorm.DB
}

func (r PassengerRepository) ActiveByBus(busID uint) ([]models.Passenger, error) {
	var passengers []models.Passenger
	err := r.DB.Where("bus_id = ? AND active = ?", busID, true).
		Order("name ASC").
		Find(&passengers).Error
	return passengers, err
}

func (r PassengerRepository) ByID(id uint) (*models.Passenger, error) {
	var p models.Passenger
	if err := r.DB.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r PassengerRepository) ByQRToken(token string) (*models.Passenger, error) {
	var p models.Passenger
	if err := r.DB.Where("qr_token = ?", token).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
