package http

import (
	"github.com/gin-gonic/gin"
	"github.com/walletpulse/gatekeeper/service"
	"go.uber.org/zap"
)

// SetupRouter sets up the Gin router.
func SetupRouter(authService *service.AuthService, activityService *service.ActivityService, logger *zap.Logger) *gin.Engine {
	router := gin.Default()

	handlers := NewHandlers(authService, activityService, logger)

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.GET("/challenge/:address", handlers.Challenge)
		auth.POST("/login", handlers.Login)
		auth.POST("/logout", handlers.Logout)
	}

	// Protected API routes
	api := router.Group("/api")
	api.Use(AuthMiddleware(authService))
	{
		api.GET("/me", handlers.Me)
		api.POST("/activity", handlers.RecordActivity)
		api.GET("/activity", handlers.QueryActivity)
	}

	return router
}
