package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bus_dispatch/internal/services"
)

func authUserID(c *gin.Context) uint {
	return c.MustGet("user_id").(uint)
}

func authOrgID(c *gin.Context) uint {
	return c.MustGet("org_id").(uint)
}

func authRole(c *gin.Context) string {
	return c.GetString("role")
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format."})
		return 0, false
	}
	return uint(id), true
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// respondErr maps engine errors to HTTP statuses. Validation and
// state-conflict errors carry their specific message; everything else is an
// internal error.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
	case errors.Is(err, services.ErrInvalidTimeFormat),
		errors.Is(err, services.ErrUnknownAction),
		errors.Is(err, services.ErrUnknownTarget),
		errors.Is(err, services.ErrNoPassengers):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrNoActiveTrip),
		errors.Is(err, services.ErrNoScheduledTrip),
		errors.Is(err, services.ErrPassengerNotOnBus),
		errors.Is(err, services.ErrTripIntegrity):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrTokenNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
