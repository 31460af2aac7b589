package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project belongs to exactly one organization.
type Project struct {
	ID             string    `json:"id" gorm:"size:36;primaryKey"`
	Name           string    `json:"name" gorm:"size:200;not null"`
	LogoURL        *string   `json:"logoUrl"`
	OrganizationID string    `json:"organizationId" gorm:"size:36;not null;index"`
	CreatedBy      *string   `json:"createdBy" gorm:"size:36"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
