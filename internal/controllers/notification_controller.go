package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bus_dispatch/internal/config"
	"bus_dispatch/internal/models"
)

// ListMyNotifications returns the caller's notifications, newest first.
// ?unread=true filters to unread only.
func ListMyNotifications(c *gin.Context) {
	query := config.DB.Where("user_id = ?", authUserID(c))
	if c.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}

	var notifs []models.Notification
	if err := query.Order("created_at DESC").Limit(100).Find(&notifs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing notifications: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": notifs})
}

// MarkNotificationRead flips the read flag on one of the caller's
// notifications.
func MarkNotificationRead(c *gin.Context) {
	nID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var notif models.Notification
	if err := config.DB.Where("id = ? AND user_id = ?", nID, authUserID(c)).First(&notif).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	notif.Read = true
	if err := config.DB.Save(&notif).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": notif})
}

// BroadcastNotification sends an admin announcement to the organization's
// users ("all", "drivers" or "guardians").
func BroadcastNotification(c *gin.Context) {
	var input struct {
		Target string `json:"target"`
		Title  string `json:"title" binding:"required"`
		Body   string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sent, err := dispatcher.Broadcast(authOrgID(c), input.Target, input.Title, input.Body)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipients": sent})
}

// EmergencyAlert lets a driver raise an incident to every admin of their
// organization.
func EmergencyAlert(c *gin.Context) {
	driver, err := driverProfile(c)
	if err != nil {
		return
	}

	var input struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meta := map[string]string{"driver_id": itoa(driver.ID)}
	if trip, err := tripSvc.ActiveForDriver(driver.ID); err == nil {
		meta["trip_id"] = itoa(trip.ID)
	}

	sent, err := dispatcher.Emergency(authOrgID(c), "Emergency alert", input.Message, meta)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipients": sent})
}
