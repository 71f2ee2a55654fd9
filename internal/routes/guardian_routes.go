package routes

import (
	"bus_dispatch/internal/controllers"
	"bus_dispatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

func GuardianRoutes(r *gin.Engine) {
	guardian := r.Group("/guardian")
	guardian.Use(middleware.RequireAuthWithRole("guardian"))
	{
		guardian.GET("/passengers", controllers.ListMyPassengers)
		guardian.POST("/absence", controllers.ReportAbsence)
	}
}
