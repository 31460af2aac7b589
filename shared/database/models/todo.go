package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Todo is a task node. ParentID, when set, must reference a todo in the same
// project and must not make the node its own ancestor.
//
// Attachments holds a JSON-serialized list (data URIs or object storage URLs);
// handlers deserialize it back to structured form on every read.
type Todo struct {
	ID          string    `json:"id" gorm:"size:36;primaryKey"`
	Text        string    `json:"text" gorm:"not null"`
	Completed   bool      `json:"completed" gorm:"not null;default:false"`
	ProjectID   string    `json:"projectId" gorm:"size:36;not null;index"`
	ParentID    *string   `json:"parentId" gorm:"size:36;index"`
	CreatedBy   *string   `json:"createdBy" gorm:"size:36"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Description *string   `json:"description"`
	Attachments *string   `json:"attachments" gorm:"type:text"`
}

func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
