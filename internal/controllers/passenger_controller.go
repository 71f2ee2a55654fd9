package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"bus_dispatch/internal/config"
	"bus_dispatch/internal/models"
)

type passengerInput struct {
	Name          string  `json:"name" binding:"required"`
	BusID         uint    `json:"bus_id"`
	GuardianID    uint    `json:"guardian_id"`
	PickupAddress string  `json:"pickup_address"`
	PickupLat     float64 `json:"pickup_lat"`
	PickupLng     float64 `json:"pickup_lng"`
}

// CreatePassenger registers a passenger and mints their boarding QR token.
func CreatePassenger(c *gin.Context) {
	var input passengerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.GuardianID != 0 {
		var guardian models.User
		if err := config.DB.Where("id = ? AND organization_id = ? AND role = ?",
			input.GuardianID, authOrgID(c), "guardian").First(&guardian).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "guardian_id does not match a guardian in this organization"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
	}

	passenger := models.Passenger{
		Name:           input.Name,
		OrganizationID: authOrgID(c),
		BusID:          input.BusID,
		GuardianID:     input.GuardianID,
		PickupAddress:  input.PickupAddress,
		PickupLat:      input.PickupLat,
		PickupLng:      input.PickupLng,
		QRToken:        uuid.NewString(),
		Active:         true,
	}
	if err := config.DB.Create(&passenger).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create passenger failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"passenger": passenger})
}

// ListPassengers lists the organization's passengers, optionally filtered
// by bus.
func ListPassengers(c *gin.Context) {
	query := config.DB.Where("organization_id = ?", authOrgID(c))
	if busID := c.Query("bus_id"); busID != "" {
		query = query.Where("bus_id = ?", busID)
	}

	var passengers []models.Passenger
	if err := query.Preload("Guardian").Order("name ASC").Find(&passengers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing passengers: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": passengers})
}

// UpdatePassenger edits passenger details or deactivates them.
func UpdatePassenger(c *gin.Context) {
	pID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var passenger models.Passenger
	if err := config.DB.Where("id = ? AND organization_id = ?", pID, authOrgID(c)).First(&passenger).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Passenger not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var input struct {
		Name          *string  `json:"name"`
		BusID         *uint    `json:"bus_id"`
		GuardianID    *uint    `json:"guardian_id"`
		PickupAddress *string  `json:"pickup_address"`
		PickupLat     *float64 `json:"pickup_lat"`
		PickupLng     *float64 `json:"pickup_lng"`
		Active        *bool    `json:"active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		passenger.Name = *input.Name
	}
	if input.BusID != nil {
		passenger.BusID = *input.BusID
	}
	if input.GuardianID != nil {
		passenger.GuardianID = *input.GuardianID
	}
	if input.PickupAddress != nil {
		passenger.PickupAddress = *input.PickupAddress
	}
	if input.PickupLat != nil {
		passenger.PickupLat = *input.PickupLat
	}
	if input.PickupLng != nil {
		passenger.PickupLng = *input.PickupLng
	}
	if input.Active != nil {
		passenger.Active = *input.Active
	}

	if err := config.DB.Save(&passenger).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"passenger": passenger})
}

// RegeneratePassengerToken rotates a passenger's boarding QR token.
func RegeneratePassengerToken(c *gin.Context) {
	pID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var passenger models.Passenger
	if err := config.DB.Where("id = ? AND organization_id = ?", pID, authOrgID(c)).First(&passenger).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Passenger not found"})
		return
	}

	passenger.QRToken = uuid.NewString()
	if err := config.DB.Save(&passenger).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Token rotation failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"passenger": passenger})
}

// ListMyPassengers lists the passengers linked to the authenticated
// guardian.
func ListMyPassengers(c *gin.Context) {
	var passengers []models.Passenger
	if err := config.DB.Where("guardian_id = ?", authUserID(c)).Order("name ASC").Find(&passengers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing passengers: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": passengers})
}
