package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_dispatch/internal/config"
	"bus_dispatch/internal/models"
)

// StartTrip moves the driver's trip from SCHEDULED to ONGOING.
func StartTrip(c *gin.Context) {
	trip, ok := ownedTrip(c)
	if !ok {
		return
	}

	updated, err := tripSvc.Start(trip.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": updated})
}

// EndTrip moves the driver's trip from ONGOING to COMPLETED.
func EndTrip(c *gin.Context) {
	trip, ok := ownedTrip(c)
	if !ok {
		return
	}

	updated, err := tripSvc.End(trip.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": updated})
}

// CancelTrip cancels a trip. Admins may cancel any unfinished trip in their
// organization.
func CancelTrip(c *gin.Context) {
	tID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var trip models.Trip
	if err := config.DB.Where("id = ? AND organization_id = ?", tID, authOrgID(c)).First(&trip).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}

	updated, err := tripSvc.Cancel(trip.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if collector != nil {
		collector.TripsCancelled.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"trip": updated})
}

type positionInput struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Accuracy  float64 `json:"accuracy"`
}

// positionEvent is the wire shape pushed to websocket trackers and the NATS
// position stream.
type positionEvent struct {
	TripID     uint      `json:"trip_id"`
	BusID      uint      `json:"bus_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Speed      float64   `json:"speed"`
	Heading    float64   `json:"heading"`
	DistanceKM float64   `json:"distance_km"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ReportLocation ingests one position fix from the driver's device and fans
// it out to live trackers.
func ReportLocation(c *gin.Context) {
	trip, ok := ownedTrip(c)
	if !ok {
		return
	}

	var input positionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := tripSvc.ReportPosition(trip.ID,
		input.Latitude, input.Longitude, input.Speed, input.Heading, input.Accuracy)
	if err != nil {
		respondErr(c, err)
		return
	}
	if collector != nil {
		collector.PositionsIngested.Inc()
	}

	event := positionEvent{
		TripID:     updated.ID,
		BusID:      updated.BusID,
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Speed:      input.Speed,
		Heading:    input.Heading,
		DistanceKM: updated.DistanceCovered,
		RecordedAt: time.Now(),
	}
	payload, err := json.Marshal(event)
	if err == nil {
		trackingHub.Publish(updated.ID, payload)
		if pushPub != nil {
			if err := pushPub.PublishPosition(updated.ID, payload); err != nil {
				logrus.WithError(err).WithField("trip_id", updated.ID).Warn("position stream publish failed")
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"trip": updated})
}

// GetActiveTrip returns the authenticated driver's single unfinished trip.
func GetActiveTrip(c *gin.Context) {
	driver, err := driverProfile(c)
	if err != nil {
		return
	}

	trip, err := tripSvc.ActiveForDriver(driver.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip": trip})
}

// GetTrip returns one trip with its attendance roster and location history.
func GetTrip(c *gin.Context) {
	tID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var trip models.Trip
	if err := config.DB.Where("id = ? AND organization_id = ?", tID, authOrgID(c)).First(&trip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var attendance []models.Attendance
	config.DB.Where("trip_id = ?", trip.ID).Preload("Passenger").Find(&attendance)

	var locations []models.TripLocation
	config.DB.Where("trip_id = ?", trip.ID).Order("recorded_at ASC").Find(&locations)

	c.JSON(http.StatusOK, gin.H{
		"trip":       trip,
		"attendance": attendance,
		"locations":  locations,
	})
}

// ListTrips lists the organization's trips, filterable by status, bus and
// date.
func ListTrips(c *gin.Context) {
	query := config.DB.Where("organization_id = ?", authOrgID(c))
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if busID := c.Query("bus_id"); busID != "" {
		query = query.Where("bus_id = ?", busID)
	}
	if raw := c.Query("date"); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		query = query.Where("scheduled_start >= ? AND scheduled_start < ?", day, day.AddDate(0, 0, 1))
	}

	var trips []models.Trip
	if err := query.Order("scheduled_start DESC").Find(&trips).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing trips: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": trips})
}

// ownedTrip resolves the trip targeted by :id and verifies the
// authenticated driver owns it. It writes the error response on failure.
func ownedTrip(c *gin.Context) (*models.Trip, bool) {
	driver, err := driverProfile(c)
	if err != nil {
		return nil, false
	}

	tID, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}

	var trip models.Trip
	if err := config.DB.First(&trip, tID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	if trip.DriverID != driver.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Trip is not assigned to this driver"})
		return nil, false
	}
	return &trip, true
}
