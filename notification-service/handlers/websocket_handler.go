package handlers

import (
	"net/http"

	"taskhive-backend/notification-service/services"

	"github.com/gin-gonic/gin"
)

// HandleWebSocket handles WebSocket connection requests
// @Summary WebSocket Connection
// @Description Establish WebSocket connection for real-time notifications, keyed by the invitee's email
// @Tags websocket
// @Param email path string true "Invitee email"
// @Router /ws/notifications/{email} [get]
func HandleWebSocket(c *gin.Context) {
	wsManager := services.GetWebSocketManager()
	wsManager.HandleWebSocketConnection(c)
}

// SendWebSocketMessage sends message via WebSocket service
// @Summary Send WebSocket Message
// @Description Send real-time message to a connected client by email
// @Tags websocket
// @Accept json
// @Produce json
// @Param payload body SendMessageRequest true "Message payload"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /ws/send [post]
func SendWebSocketMessage(c *gin.Context) {
	var request SendMessageRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	wsManager := services.GetWebSocketManager()

	if err := wsManager.SendToEmail(request.Email, request.Message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "WebSocket message sent successfully",
		"email":   services.NormalizeKey(request.Email),
	})
}

// SendMessageRequest represents the request payload for sending WebSocket messages
type SendMessageRequest struct {
	Email   string                        `json:"email" binding:"required"`
	Message *services.NotificationMessage `json:"message" binding:"required"`
}
