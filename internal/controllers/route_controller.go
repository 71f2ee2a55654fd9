package controllers

import (
	"encoding/binary"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_dispatch/internal/config"
	"bus_dispatch/internal/models"
	"bus_dispatch/internal/services"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// RouteResponse mirrors models.Route with Geometry rendered as a GeoJSON
// string for API output.
type RouteResponse struct {
	ID             uint           `json:"ID"`
	CreatedAt      time.Time      `json:"CreatedAt"`
	UpdatedAt      time.Time      `json:"UpdatedAt"`
	DeletedAt      gorm.DeletedAt `json:"DeletedAt,omitempty"`
	Name           string         `json:"name"`
	Description    string         `json:"description"`
	OrganizationID uint           `json:"organization_id"`
	BusID          uint           `json:"bus_id"`
	Geometry       string         `json:"geometry"`
	Stops          []models.Stop  `json:"stops"`
}

func toRouteResponse(route models.Route) RouteResponse {
	jsonGeom, _ := convertWKBToGeoJSON(route.Geometry)
	return RouteResponse{
		ID:             route.ID,
		CreatedAt:      route.CreatedAt,
		UpdatedAt:      route.UpdatedAt,
		DeletedAt:      route.DeletedAt,
		Name:           route.Name,
		Description:    route.Description,
		OrganizationID: route.OrganizationID,
		BusID:          route.BusID,
		Geometry:       jsonGeom,
		Stops:          route.Stops,
	}
}

// parseAndConvertGeometry parses a GeoJSON string into a geom.T and returns WKB bytes
func parseAndConvertGeometry(raw string) ([]byte, error) {
	if raw == "" {
		return nil, nil
	}
	var g geom.T
	if err := gjson.Unmarshal([]byte(raw), &g); err != nil {
		return nil, err
	}
	return wkb.Marshal(g, binary.LittleEndian)
}

// convertWKBToGeoJSON converts WKB bytes into a GeoJSON string
func convertWKBToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CreateRoute builds a route for a bus: the stop list is produced by the
// stop planner (oracle-optimized, or fallback-ordered when the oracle is
// down), the optional geometry comes in as a GeoJSON LineString.
func CreateRoute(c *gin.Context) {
	var input struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		BusID       uint   `json:"bus_id" binding:"required"`
		StartTime   string `json:"start_time" binding:"required"` // "HH:MM" / "H:MM AM"
		Geometry    string `json:"geometry"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateRoute: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	orgID := authOrgID(c)

	var bus models.Bus
	if err := config.DB.Where("id = ? AND organization_id = ?", input.BusID, orgID).First(&bus).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bus_id does not match a bus in this organization"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	stops, err := planner.GenerateStops(c.Request.Context(), orgID, input.BusID, input.StartTime)
	if err != nil {
		respondErr(c, err)
		return
	}
	if len(stops) == 0 {
		respondErr(c, services.ErrNoPassengers)
		return
	}

	wkbGeom, err := parseAndConvertGeometry(input.Geometry)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geometry: " + err.Error()})
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}

	route := models.Route{
		Name:           input.Name,
		Description:    input.Description,
		OrganizationID: orgID,
		BusID:          input.BusID,
		Geometry:       wkbGeom,
	}
	if err := tx.Create(&route).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create route failed: " + err.Error()})
		return
	}

	for i := range stops {
		stops[i].RouteID = route.ID
	}
	if err := tx.Create(&stops).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create stops failed: " + err.Error()})
		return
	}

	// Point the bus at its new route.
	bus.RouteID = route.ID
	if err := tx.Save(&bus).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Bus route assignment failed: " + err.Error()})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	config.DB.Preload("Stops").First(&route, route.ID)
	c.JSON(http.StatusCreated, gin.H{"route": toRouteResponse(route)})
}

// ResequenceStops regenerates the stop list for an existing route, for
// example after passengers were added to or removed from the bus.
func ResequenceStops(c *gin.Context) {
	rID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var route models.Route
	if err := config.DB.Where("id = ? AND organization_id = ?", rID, authOrgID(c)).First(&route).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}

	var input struct {
		StartTime string `json:"start_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stops, err := planner.GenerateStops(c.Request.Context(), route.OrganizationID, route.BusID, input.StartTime)
	if err != nil {
		respondErr(c, err)
		return
	}
	if len(stops) == 0 {
		respondErr(c, services.ErrNoPassengers)
		return
	}

	tx := config.DB.Begin()
	if err := tx.Where("route_id = ?", route.ID).Delete(&models.Stop{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear stops: " + err.Error()})
		return
	}
	for i := range stops {
		stops[i].RouteID = route.ID
	}
	if err := tx.Create(&stops).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create stops failed: " + err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}

	config.DB.Preload("Stops").First(&route, route.ID)
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(route)})
}

// ListRoutes returns all routes + stops for the caller's organization.
func ListRoutes(c *gin.Context) {
	var routes []models.Route
	config.DB.Preload("Stops", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).Where("organization_id = ?", authOrgID(c)).Find(&routes)

	var routeResponses []RouteResponse
	for _, r := range routes {
		routeResponses = append(routeResponses, toRouteResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"routes": routeResponses})
}

// GetRoute returns a single route with ordered stops.
func GetRoute(c *gin.Context) {
	rID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var route models.Route
	if err := config.DB.Preload("Stops", func(db *gorm.DB) *gorm.DB {
		return db.Order("seq ASC")
	}).Where("id = ? AND organization_id = ?", rID, authOrgID(c)).First(&route).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(route)})
}

// UpdateRoute handles updating route metadata and geometry.
func UpdateRoute(c *gin.Context) {
	rID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var existingRoute models.Route
	if err := config.DB.Where("id = ? AND organization_id = ?", rID, authOrgID(c)).First(&existingRoute).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		} else {
			logrus.WithError(err).Error("UpdateRoute: Database error fetching route")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var input struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Geometry    *string `json:"geometry"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("UpdateRoute: Invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Name != nil {
		existingRoute.Name = *input.Name
	}
	if input.Description != nil {
		existingRoute.Description = *input.Description
	}
	if input.Geometry != nil {
		if *input.Geometry == "" {
			existingRoute.Geometry = nil
		} else {
			wkbGeom, err := parseAndConvertGeometry(*input.Geometry)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geometry: " + err.Error()})
				return
			}
			existingRoute.Geometry = wkbGeom
		}
	}

	if err := config.DB.Save(&existingRoute).Error; err != nil {
		logrus.WithError(err).Error("UpdateRoute: Failed to save updated route")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(existingRoute)})
}

// DeleteRoute removes a route and its stops.
func DeleteRoute(c *gin.Context) {
	rID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var route models.Route
	if err := config.DB.Where("id = ? AND organization_id = ?", rID, authOrgID(c)).First(&route).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	tx := config.DB.Begin()
	if tx.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	if err := tx.Where("route_id = ?", route.ID).Delete(&models.Stop{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete stops: " + err.Error()})
		return
	}
	if err := tx.Delete(&route).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete route: " + err.Error()})
		return
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Route deleted successfully"})
}
