package routes

import (
	"bus_dispatch/internal/controllers"
	"bus_dispatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

func NotificationRoutes(r *gin.Engine) {
	notifs := r.Group("/notifications")
	notifs.Use(middleware.RequireAuth())
	{
		notifs.GET("", controllers.ListMyNotifications)
		notifs.POST("/:id/read", controllers.MarkNotificationRead)
	}
}
