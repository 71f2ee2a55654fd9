package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bus_dispatch/internal/config"
	"bus_dispatch/internal/models"
	"bus_dispatch/internal/services"
)

// MarkAttendance applies one action to a batch of passengers on the
// driver's trip.
func MarkAttendance(c *gin.Context) {
	trip, ok := ownedTrip(c)
	if !ok {
		return
	}

	var input struct {
		PassengerIDs []uint `json:"passenger_ids" binding:"required"`
		Action       string `json:"action" binding:"required"`
		Notes        string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	action, err := services.ParseAction(input.Action)
	if err != nil {
		respondErr(c, err)
		return
	}

	res, err := attendanceSvc.Mark(trip, input.PassengerIDs, action, input.Notes)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}

// VerifyBoardingToken resolves a scanned QR token and marks the passenger
// present on the driver's active trip.
func VerifyBoardingToken(c *gin.Context) {
	driver, err := driverProfile(c)
	if err != nil {
		return
	}

	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := attendanceSvc.VerifyByQRToken(driver.ID, input.Token)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": rec})
}

// ReportAbsence lets a guardian flag their passenger absent for a day's
// scheduled trips.
func ReportAbsence(c *gin.Context) {
	var input struct {
		PassengerID uint   `json:"passenger_id" binding:"required"`
		Date        string `json:"date"` // YYYY-MM-DD, defaults to today
		Reason      string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var passenger models.Passenger
	if err := config.DB.Where("id = ? AND guardian_id = ?", input.PassengerID, authUserID(c)).First(&passenger).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Passenger not found for this guardian"})
		return
	}

	date := time.Now()
	if input.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", input.Date, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	marked, err := attendanceSvc.ReportAbsence(passenger.ID, date, input.Reason)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trips_marked": marked})
}

// ListTripAttendance returns the attendance roster of one trip, with the
// not-yet-marked passengers of the bus surfaced as AWAITING.
func ListTripAttendance(c *gin.Context) {
	tID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var trip models.Trip
	if err := config.DB.Where("id = ? AND organization_id = ?", tID, authOrgID(c)).First(&trip).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trip not found"})
		return
	}

	var records []models.Attendance
	if err := config.DB.Where("trip_id = ?", trip.ID).Preload("Passenger").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	marked := make(map[uint]bool, len(records))
	for _, r := range records {
		marked[r.PassengerID] = true
	}

	var passengers []models.Passenger
	config.DB.Where("bus_id = ? AND active = ?", trip.BusID, true).Order("name ASC").Find(&passengers)
	for _, p := range passengers {
		if !marked[p.ID] {
			records = append(records, models.Attendance{
				TripID:      trip.ID,
				PassengerID: p.ID,
				Passenger:   p,
				Status:      models.AttendanceAwaiting,
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}
