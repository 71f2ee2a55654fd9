package routes

import (
	ginlogger "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
)

// SetupRouter assembles the HTTP surface. The caller owns the listener and
// wraps the engine with CORS.
func SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ginlogger.SetLogger())

	AuthRoutes(r)
	AdminRoutes(r)
	DriverRoutes(r)
	GuardianRoutes(r)
	NotificationRoutes(r)
	WebSocketRoutes(r)

	return r
}
