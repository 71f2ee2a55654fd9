package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bus_dispatch/internal/config"
	"bus_dispatch/internal/models"
	"bus_dispatch/internal/services"
)

type scheduleInput struct {
	BusID         uint     `json:"bus_id" binding:"required"`
	DriverID      uint     `json:"driver_id" binding:"required"`
	RouteID       uint     `json:"route_id"`
	BoardingTime  string   `json:"boarding_time" binding:"required"`
	OperatingDays []string `json:"operating_days"`
	Kind          string   `json:"kind"`
}

var weekdayNames = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// normalizeOperatingDays lowercases and validates weekday names.
func normalizeOperatingDays(days []string) ([]string, error) {
	out := make([]string, 0, len(days))
	for _, d := range days {
		d = strings.ToLower(strings.TrimSpace(d))
		if !weekdayNames[d] {
			return nil, errors.New("invalid operating day: " + d)
		}
		out = append(out, d)
	}
	return out, nil
}

// CreateSchedule registers a recurring or one-time schedule. The boarding
// time is parsed up front so a bad clock string fails here rather than at
// activation.
func CreateSchedule(c *gin.Context) {
	var input scheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, _, err := services.ParseClock(input.BoardingTime); err != nil {
		respondErr(c, err)
		return
	}

	kind := input.Kind
	if kind == "" {
		kind = models.ScheduleRecurring
	}
	if kind != models.ScheduleRecurring && kind != models.ScheduleOneTime {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be recurring or one_time"})
		return
	}

	days, err := normalizeOperatingDays(input.OperatingDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if kind == models.ScheduleRecurring && len(days) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recurring schedules need at least one operating day"})
		return
	}

	schedule := models.Schedule{
		OrganizationID: authOrgID(c),
		BusID:          input.BusID,
		DriverID:       input.DriverID,
		RouteID:        input.RouteID,
		BoardingTime:   input.BoardingTime,
		OperatingDays:  pq.StringArray(days),
		Kind:           kind,
		Active:         true,
	}
	if err := config.DB.Create(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create schedule failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"schedule": schedule})
}

func ListSchedules(c *gin.Context) {
	query := config.DB.Where("organization_id = ?", authOrgID(c))
	if busID := c.Query("bus_id"); busID != "" {
		query = query.Where("bus_id = ?", busID)
	}

	var schedules []models.Schedule
	if err := query.Find(&schedules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing schedules: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": schedules})
}

func GetSchedule(c *gin.Context) {
	sID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var schedule models.Schedule
	if err := config.DB.Where("id = ? AND organization_id = ?", sID, authOrgID(c)).First(&schedule).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

// UpdateSchedule edits a schedule's definition. Already-generated trips are
// not retimed here; use the reschedule endpoint for that.
func UpdateSchedule(c *gin.Context) {
	sID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var schedule models.Schedule
	if err := config.DB.Where("id = ? AND organization_id = ?", sID, authOrgID(c)).First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	var input struct {
		BusID         *uint     `json:"bus_id"`
		DriverID      *uint     `json:"driver_id"`
		RouteID       *uint     `json:"route_id"`
		BoardingTime  *string   `json:"boarding_time"`
		OperatingDays *[]string `json:"operating_days"`
		Active        *bool     `json:"active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.BusID != nil {
		schedule.BusID = *input.BusID
	}
	if input.DriverID != nil {
		schedule.DriverID = *input.DriverID
	}
	if input.RouteID != nil {
		schedule.RouteID = *input.RouteID
	}
	if input.BoardingTime != nil {
		if _, _, err := services.ParseClock(*input.BoardingTime); err != nil {
			respondErr(c, err)
			return
		}
		schedule.BoardingTime = *input.BoardingTime
	}
	if input.OperatingDays != nil {
		days, err := normalizeOperatingDays(*input.OperatingDays)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		schedule.OperatingDays = pq.StringArray(days)
	}
	if input.Active != nil {
		schedule.Active = *input.Active
	}

	if err := config.DB.Save(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

// DeleteSchedule deactivates a schedule and cancels its unfinished trips.
func DeleteSchedule(c *gin.Context) {
	sID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var schedule models.Schedule
	if err := config.DB.Where("id = ? AND organization_id = ?", sID, authOrgID(c)).First(&schedule).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}

	cancelled, err := tripSvc.CancelForSchedule(schedule.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	if collector != nil {
		collector.TripsCancelled.Add(float64(cancelled))
	}

	if err := config.DB.Delete(&schedule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed: " + err.Error()})
		return
	}

	logrus.WithFields(logrus.Fields{
		"schedule_id":     schedule.ID,
		"trips_cancelled": cancelled,
	}).Info("schedule deleted")
	c.JSON(http.StatusOK, gin.H{
		"message":         "Schedule deleted",
		"trips_cancelled": cancelled,
	})
}

// ActivateSchedules runs trip generation for the organization, for today or
// for an explicit ?date=YYYY-MM-DD.
func ActivateSchedules(c *gin.Context) {
	target := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		target = parsed
	}

	res, err := scheduleSvc.ActivateForDate(authOrgID(c), target)
	if err != nil {
		respondErr(c, err)
		return
	}
	if collector != nil {
		collector.ActivationRuns.Inc()
		collector.TripsGenerated.Add(float64(res.TripsCreated))
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}

// RescheduleSchedule moves a schedule's upcoming trips to a new date.
func RescheduleSchedule(c *gin.Context) {
	sID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var schedule models.Schedule
	if err := config.DB.Where("id = ? AND organization_id = ?", sID, authOrgID(c)).First(&schedule).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schedule not found"})
		return
	}

	var input struct {
		NewDate string `json:"new_date" binding:"required"` // YYYY-MM-DD
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	newDate, err := time.ParseInLocation("2006-01-02", input.NewDate, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "new_date must be YYYY-MM-DD"})
		return
	}

	res, err := scheduleSvc.Reschedule(schedule.ID, newDate)
	if err != nil {
		respondErr(c, err)
		return
	}
	if collector != nil {
		collector.TripsGenerated.Add(float64(res.TripsCreated))
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}
