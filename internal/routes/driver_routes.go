package routes

import (
	"bus_dispatch/internal/controllers"
	"bus_dispatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

func DriverRoutes(r *gin.Engine) {
	driver := r.Group("/driver")
	driver.Use(middleware.RequireAuthWithRole("driver"))
	{
		driver.GET("/bus", controllers.GetAuthenticatedDriverBus)
		driver.GET("/trips/active", controllers.GetActiveTrip)

		driver.POST("/trips/:id/start", controllers.StartTrip)
		driver.POST("/trips/:id/end", controllers.EndTrip)
		driver.POST("/trips/:id/location", controllers.ReportLocation)
		driver.POST("/trips/:id/attendance", controllers.MarkAttendance)

		driver.POST("/attendance/verify", controllers.VerifyBoardingToken)
		driver.POST("/emergency", controllers.EmergencyAlert)
	}
}
