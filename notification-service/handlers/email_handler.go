package handlers

import (
	"net/http"
	"strings"
	"time"

	"taskhive-backend/notification-service/services"
	"taskhive-backend/shared/config"

	"github.com/gin-gonic/gin"
)

// EmailHandler serves the email dispatch endpoints
type EmailHandler struct {
	emailService *services.EmailService
	config       *config.Config
}

// NewEmailHandler creates a new email handler
func NewEmailHandler(emailService *services.EmailService, cfg *config.Config) *EmailHandler {
	return &EmailHandler{
		emailService: emailService,
		config:       cfg,
	}
}

// InvitationEmailRequest represents request body for invitation emails
type InvitationEmailRequest struct {
	Email            string `json:"email" binding:"required"`
	InvitationID     string `json:"invitation_id" binding:"required"`
	OrganizationName string `json:"organization_name" binding:"required"`
	ProjectName      string `json:"project_name"`
	InviterName      string `json:"inviter_name"`
	Role             string `json:"role"`
}

// SendEmail sends a raw email
// @Summary Send an email
// @Description Send an email with optional template rendering
// @Tags notifications
// @Accept json
// @Produce json
// @Param email body services.EmailRequest true "Email"
// @Success 200 {object} services.EmailResponse
// @Failure 400 {object} map[string]string
// @Router /notifications/email/send [post]
func (h *EmailHandler) SendEmail(ctx *gin.Context) {
	var request services.EmailRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "code": "INVALID_BODY"})
		return
	}

	response, err := h.emailService.SendEmail(request)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// SendInvitationEmail emails an organization invitation to the invitee
// @Summary Send an invitation email
// @Description Render the invitation template and email the invitee; pushes a real-time event when the invitee is connected
// @Tags notifications
// @Accept json
// @Produce json
// @Param invitation body InvitationEmailRequest true "Invitation email"
// @Success 200 {object} services.EmailResponse
// @Failure 400 {object} map[string]string
// @Router /notifications/email/invitation [post]
func (h *EmailHandler) SendInvitationEmail(ctx *gin.Context) {
	var request InvitationEmailRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "code": "INVALID_BODY"})
		return
	}

	inviterName := request.InviterName
	if inviterName == "" {
		inviterName = "Someone"
	}

	response, err := h.emailService.SendInvitationEmail(
		strings.ToLower(strings.TrimSpace(request.Email)),
		request.InvitationID,
		request.OrganizationName,
		request.ProjectName,
		inviterName,
		request.Role,
	)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send invitation email"})
		return
	}

	// Best effort real-time push to a connected invitee
	wsManager := services.GetWebSocketManager()
	wsManager.SendToEmail(request.Email, &services.NotificationMessage{
		Type:    "invitation_received",
		Title:   "New invitation",
		Message: inviterName + " invited you to join " + request.OrganizationName,
		Data: map[string]interface{}{
			"invitationId":     request.InvitationID,
			"organizationName": request.OrganizationName,
			"projectName":      request.ProjectName,
			"role":             request.Role,
		},
		Timestamp: time.Now().UTC(),
	})

	ctx.JSON(http.StatusOK, response)
}
