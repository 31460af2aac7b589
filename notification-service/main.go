package main

import (
	"log"
	"net/http"
	"strings"

	"taskhive-backend/notification-service/handlers"
	"taskhive-backend/notification-service/services"
	"taskhive-backend/shared/config"

	"github.com/gin-gonic/gin"
)

// @title TaskHive Notification Service API
// @version 1.0
// @description Invitation emails and real-time notifications
// @host localhost:8002
// @BasePath /api

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	router := gin.Default()

	// Initialize email service
	emailService := services.NewEmailService(cfg)
	if emailService.DevelopmentMode() {
		log.Println("📧 SMTP not configured, running in development mode (emails are logged)")
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "notification-service",
			"status":  "healthy",
		})
	})

	// Email routes
	emailHandler := handlers.NewEmailHandler(emailService, cfg)
	emailRoutes := router.Group("/api/notifications/email")
	{
		emailRoutes.POST("/send", emailHandler.SendEmail)
		emailRoutes.POST("/invitation", emailHandler.SendInvitationEmail)
	}

	// WebSocket endpoints
	router.GET("/ws/notifications/:email", handlers.HandleWebSocket)
	router.POST("/ws/send", handlers.SendWebSocketMessage)

	port := strings.Split(cfg.NotificationServiceURL, ":")[2]
	log.Printf("🔔 Notification Service starting on port %s...", port)
	log.Fatal(router.Run(":" + port))
}
