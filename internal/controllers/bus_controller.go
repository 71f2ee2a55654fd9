package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"bus_dispatch/internal/config"
	"bus_dispatch/internal/models"
)

type busInput struct {
	NumberPlate string `json:"number_plate" binding:"required"`
	Capacity    int    `json:"capacity"`
	DriverID    *uint  `json:"driver_id"`
	RouteID     uint   `json:"route_id"`
}

type busUpdateInput struct {
	NumberPlate *string `json:"number_plate"`
	Capacity    *int    `json:"capacity"`
	DriverID    *uint   `json:"driver_id"`
	RouteID     *uint   `json:"route_id"`
	InService   *bool   `json:"in_service"`
}

// normalizeDriverID maps the wire value to the nullable assignment column:
// 0 (and null) mean unassigned and are stored as NULL so idle buses never
// collide on the driver unique index.
func normalizeDriverID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}

// applyBusUpdate folds a partial update into the bus. A driver_id of 0
// clears the assignment.
func applyBusUpdate(bus *models.Bus, input busUpdateInput) {
	if input.NumberPlate != nil {
		bus.NumberPlate = *input.NumberPlate
	}
	if input.Capacity != nil {
		bus.Capacity = *input.Capacity
	}
	if input.DriverID != nil {
		bus.DriverID = normalizeDriverID(input.DriverID)
	}
	if input.RouteID != nil {
		bus.RouteID = *input.RouteID
	}
	if input.InService != nil {
		bus.InService = *input.InService
	}
}

// CreateBus registers a bus for the admin's organization. The unique index
// on driver_id enforces the one-active-bus-per-driver invariant at
// assignment time.
func CreateBus(c *gin.Context) {
	var input busInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bus := models.Bus{
		NumberPlate:    input.NumberPlate,
		Capacity:       input.Capacity,
		OrganizationID: authOrgID(c),
		DriverID:       normalizeDriverID(input.DriverID),
		RouteID:        input.RouteID,
		InService:      true,
	}
	if err := config.DB.Create(&bus).Error; err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "number plate already registered, or driver already assigned to another bus"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create bus failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"bus": bus})
}

func ListBuses(c *gin.Context) {
	var buses []models.Bus
	if err := config.DB.Where("organization_id = ?", authOrgID(c)).Find(&buses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing buses: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buses})
}

// UpdateBus edits a bus, including reassigning its driver or route.
func UpdateBus(c *gin.Context) {
	busID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var bus models.Bus
	if err := config.DB.Where("id = ? AND organization_id = ?", busID, authOrgID(c)).First(&bus).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bus not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var input busUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	applyBusUpdate(&bus, input)

	if err := config.DB.Save(&bus).Error; err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "driver already assigned to another bus"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}

// GetAuthenticatedDriverBus fetches the bus assigned to the authenticated
// driver.
func GetAuthenticatedDriverBus(c *gin.Context) {
	driver, err := driverProfile(c)
	if err != nil {
		return
	}

	var bus models.Bus
	if err := config.DB.Where("driver_id = ?", driver.ID).First(&bus).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No bus assigned to this driver."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bus data."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bus": bus})
}

// driverProfile resolves the Driver record for the authenticated user and
// writes the error response itself on failure.
func driverProfile(c *gin.Context) (*models.Driver, error) {
	var driver models.Driver
	if err := config.DB.Where("user_id = ?", authUserID(c)).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Driver profile not found for the authenticated user."})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify authorization."})
		}
		return nil, err
	}
	return &driver, nil
}
