package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Organization struct {
	ID          string    `json:"id" gorm:"size:36;primaryKey"`
	Name        string    `json:"name" gorm:"size:200;not null"`
	Description *string   `json:"description"`
	LogoURL     *string   `json:"logoUrl"`
	CreatedBy   *string   `json:"createdBy" gorm:"size:36"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
