package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrganizationMember links a user to an organization with a role.
// The (organization, user) pair is unique.
type OrganizationMember struct {
	ID             string    `json:"id" gorm:"size:36;primaryKey"`
	OrganizationID string    `json:"organizationId" gorm:"size:36;not null;uniqueIndex:idx_org_member"`
	UserID         string    `json:"userId" gorm:"size:36;not null;uniqueIndex:idx_org_member"`
	Role           string    `json:"role" gorm:"size:20;not null"`
	JoinedAt       time.Time `json:"joinedAt"`
}

func (m *OrganizationMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	return nil
}
