package models

import "time"

// Assignment is a test task generated for an applicant when the internship defines one.
type Assignment struct {
	BaseModel

	InternshipID  string    `gorm:"size:36;not null;index" json:"internship_id"`
	StudentID     string    `gorm:"size:36;not null;index" json:"student_id"`
	ApplicationID *string   `gorm:"size:36;index" json:"application_id,omitempty"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Description   string    `gorm:"type:text" json:"description"`
	DueDate       time.Time `json:"due_date"`
}
