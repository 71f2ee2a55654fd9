package routes

import (
	"bus_dispatch/internal/controllers"

	"github.com/gin-gonic/gin"
)

func WebSocketRoutes(r *gin.Engine) {
	// Token auth happens in the handler; websocket dials cannot set headers.
	ws := r.Group("/ws")
	{
		ws.GET("/trips/:id", controllers.HandleTrackingWebSocket)
	}
}
