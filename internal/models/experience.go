package models

import "time"

// ExperienceStatus is the review state of a submitted experience.
type ExperienceStatus string

const (
	ExperiencePending  ExperienceStatus = "PENDING"
	ExperienceApproved ExperienceStatus = "APPROVED"
	ExperienceRejected ExperienceStatus = "REJECTED"
)

// Grade bounds for approved experiences.
const (
	MinExperienceGrade = 2
	MaxExperienceGrade = 6
)

// Experience is work a student submits for review by a company they interned with.
type Experience struct {
	BaseModel

	StudentID     string           `gorm:"size:36;not null;index" json:"student_id"`
	CompanyID     string           `gorm:"size:36;not null;index" json:"company_id"`
	ProjectID     *string          `gorm:"size:36;index" json:"project_id,omitempty"`
	ApplicationID *string          `gorm:"size:36;index" json:"application_id,omitempty"`
	Description   string           `gorm:"type:text" json:"description"`
	Status        ExperienceStatus `gorm:"type:varchar(16);not null" json:"status"`
	Grade         *int             `json:"grade,omitempty"`
	ReviewedBy    *string          `gorm:"size:36" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time       `json:"reviewed_at,omitempty"`
}
