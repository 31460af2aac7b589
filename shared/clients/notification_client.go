package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"taskhive-backend/shared/config"
)

// NotificationClient handles communication with notification service
type NotificationClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewNotificationClient creates a new notification client
func NewNotificationClient() *NotificationClient {
	cfg := config.GetConfig()
	return &NotificationClient{
		baseURL: cfg.NotificationServiceURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// InvitationEmailRequest carries everything the invitation template needs
type InvitationEmailRequest struct {
	Email            string `json:"email"`
	InvitationID     string `json:"invitation_id"`
	OrganizationName string `json:"organization_name"`
	ProjectName      string `json:"project_name,omitempty"`
	InviterName      string `json:"inviter_name"`
	Role             string `json:"role"`
}

// EmailResponse represents email service response
type EmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	SentAt  string `json:"sent_at"`
}

// SendInvitationEmail sends an organization invitation email
func (nc *NotificationClient) SendInvitationEmail(req InvitationEmailRequest) error {
	return nc.sendEmailRequest("/api/notifications/email/invitation", req)
}

// Generic email sender
func (nc *NotificationClient) sendEmailRequest(endpoint string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %v", err)
	}

	url := fmt.Sprintf("%s%s", nc.baseURL, endpoint)
	resp, err := nc.httpClient.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notification service returned status: %d", resp.StatusCode)
	}

	return nil
}
