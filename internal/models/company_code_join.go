package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompanyCodeJoin records a join through a company invitation code. Rows are append-only.
type CompanyCodeJoin struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CompanyID string    `gorm:"size:36;not null;index" json:"company_id"`
	UserID    string    `gorm:"size:36;not null;index" json:"user_id"`
	JoinedAt  time.Time `gorm:"not null" json:"joined_at"`
	IPAddress string    `gorm:"size:64" json:"ip_address"`
}

func (j *CompanyCodeJoin) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}
