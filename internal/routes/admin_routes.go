package routes

import (
	"bus_dispatch/internal/controllers"
	"bus_dispatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuthWithRole("admin"))
	{
		admin.GET("/organization", controllers.GetOrganization)
		admin.PATCH("/organization", controllers.UpdateOrganization)
		admin.GET("/users", controllers.ListOrgUsers)

		admin.POST("/buses", controllers.CreateBus)
		admin.GET("/buses", controllers.ListBuses)
		admin.PATCH("/buses/:id", controllers.UpdateBus)

		admin.POST("/passengers", controllers.CreatePassenger)
		admin.GET("/passengers", controllers.ListPassengers)
		admin.PATCH("/passengers/:id", controllers.UpdatePassenger)
		admin.POST("/passengers/:id/token", controllers.RegeneratePassengerToken)

		admin.POST("/routes", controllers.CreateRoute)
		admin.GET("/routes", controllers.ListRoutes)
		admin.GET("/routes/:id", controllers.GetRoute)
		admin.PATCH("/routes/:id", controllers.UpdateRoute)
		admin.DELETE("/routes/:id", controllers.DeleteRoute)
		admin.POST("/routes/:id/stops", controllers.ResequenceStops)

		admin.POST("/schedules", controllers.CreateSchedule)
		admin.GET("/schedules", controllers.ListSchedules)
		admin.GET("/schedules/:id", controllers.GetSchedule)
		admin.PATCH("/schedules/:id", controllers.UpdateSchedule)
		admin.DELETE("/schedules/:id", controllers.DeleteSchedule)
		admin.POST("/schedules/activate", controllers.ActivateSchedules)
		admin.POST("/schedules/:id/reschedule", controllers.RescheduleSchedule)

		admin.GET("/trips", controllers.ListTrips)
		admin.GET("/trips/:id", controllers.GetTrip)
		admin.GET("/trips/:id/attendance", controllers.ListTripAttendance)
		admin.POST("/trips/:id/cancel", controllers.CancelTrip)

		admin.POST("/notifications/broadcast", controllers.BroadcastNotification)
	}
}
