package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification represents an in-app notification for a user. Metadata holds the JSON
// encoding of the typed payload named by Type.
type Notification struct {
	BaseModel

	UserID   string         `gorm:"size:36;not null;index" json:"user_id"`
	Type     string         `gorm:"size:64;not null" json:"type"`
	Title    string         `gorm:"size:255;not null" json:"title"`
	Message  string         `gorm:"type:text" json:"message"`
	Link     string         `gorm:"type:text" json:"link"`
	Metadata datatypes.JSON `json:"metadata"`

	IsRead bool       `gorm:"index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}
