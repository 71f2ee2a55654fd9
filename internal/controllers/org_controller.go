package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bus_dispatch/internal/config"
	"bus_dispatch/internal/models"
)

// GetOrganization returns the caller's organization.
func GetOrganization(c *gin.Context) {
	var org models.Organization
	if err := config.DB.First(&org, authOrgID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"organization": org})
}

// UpdateOrganization lets an admin edit organization details, including the
// home coordinate used as the stop-sequencing anchor.
func UpdateOrganization(c *gin.Context) {
	var org models.Organization
	if err := config.DB.First(&org, authOrgID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Organization not found"})
		return
	}

	var input struct {
		Name    *string  `json:"name"`
		Kind    *string  `json:"kind"`
		Phone   *string  `json:"phone"`
		Address *string  `json:"address"`
		HomeLat *float64 `json:"home_lat"`
		HomeLng *float64 `json:"home_lng"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		org.Name = *input.Name
	}
	if input.Kind != nil {
		org.Kind = *input.Kind
	}
	if input.Phone != nil {
		org.Phone = *input.Phone
	}
	if input.Address != nil {
		org.Address = *input.Address
	}
	if input.HomeLat != nil {
		org.HomeLat = *input.HomeLat
	}
	if input.HomeLng != nil {
		org.HomeLng = *input.HomeLng
	}

	if err := config.DB.Save(&org).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"organization": org})
}

// ListOrgUsers lists the organization's users, optionally filtered by role.
func ListOrgUsers(c *gin.Context) {
	query := config.DB.Where("organization_id = ?", authOrgID(c))
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Preload("Driver").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing users: " + err.Error()})
		return
	}

	var profiles []gin.H
	for _, user := range users {
		profiles = append(profiles, prepareUserResponse(user))
	}
	c.JSON(http.StatusOK, gin.H{"data": profiles})
}
