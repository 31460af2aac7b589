package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectMember links a user to a single project with a role.
// The (project, user) pair is unique.
type ProjectMember struct {
	ID        string    `json:"id" gorm:"size:36;primaryKey"`
	ProjectID string    `json:"projectId" gorm:"size:36;not null;uniqueIndex:idx_project_member"`
	UserID    string    `json:"userId" gorm:"size:36;not null;uniqueIndex:idx_project_member"`
	Role      string    `json:"role" gorm:"size:20;not null"`
	JoinedAt  time.Time `json:"joinedAt"`
}

func (m *ProjectMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	return nil
}
