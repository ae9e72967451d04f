package api

import (
	"payments-api/internal/middleware"
	"payments-api/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, handler *PaymentCallbackHandler, verifier *services.SignatureVerifier) {
	payments := r.Group("/payments")
	payments.Use(middleware.CallbackAuthMiddleware(verifier))
	{
		payments.POST("/callback", handler.HandleCallback)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "payments-service",
		})
	})
}
