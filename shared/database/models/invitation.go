package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation states. Pending is the only state transitions are allowed from;
// expiry is derived from ExpiresAt, not stored.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusRejected = "rejected"
)

// InvitationTTL is the fixed validity window of an invitation.
const InvitationTTL = 7 * 24 * time.Hour

// Invitation is a pending offer of membership tied to an email address.
// A nil ProjectID grants access to every project the organization has at
// acceptance time; a non-nil one grants access to exactly that project.
type Invitation struct {
	ID             string    `json:"id" gorm:"size:36;primaryKey"`
	Email          string    `json:"email" gorm:"not null;index"`
	OrganizationID string    `json:"organizationId" gorm:"size:36;not null;index"`
	ProjectID      *string   `json:"projectId" gorm:"size:36;index"`
	Role           string    `json:"role" gorm:"size:20;not null"`
	InvitedBy      *string   `json:"invitedBy" gorm:"size:36"`
	Status         string    `json:"status" gorm:"size:20;not null;default:'pending'"`
	CreatedAt      time.Time `json:"createdAt"`
	ExpiresAt      time.Time `json:"expiresAt" gorm:"not null"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Status == "" {
		i.Status = InvitationStatusPending
	}
	return nil
}

// Expired reports whether the invitation's validity window has passed.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
