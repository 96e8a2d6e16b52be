package models

import (
	"strings"
	"time"
)

// Internship is a listing published by a company.
type Internship struct {
	BaseModel

	CompanyID           string   `gorm:"size:36;not null;index" json:"company_id"`
	Company             *Company `gorm:"constraint:OnDelete:CASCADE" json:"company,omitempty"`
	Title               string   `gorm:"size:255;not null" json:"title"`
	Description         string   `gorm:"type:text" json:"description"`
	Location            string   `gorm:"size:255" json:"location"`
	RequiresCoverLetter bool     `json:"requires_cover_letter"`
	CreatedBy           string   `gorm:"size:36" json:"created_by"`

	TestAssignmentTitle       *string    `gorm:"size:255" json:"test_assignment_title,omitempty"`
	TestAssignmentDescription *string    `gorm:"type:text" json:"test_assignment_description,omitempty"`
	TestAssignmentDueDate     *time.Time `gorm:"index" json:"test_assignment_due_date,omitempty"`
}

// HasTestAssignment reports whether title, description and due date are all present.
func (i *Internship) HasTestAssignment() bool {
	return i != nil &&
		i.TestAssignmentTitle != nil && strings.TrimSpace(*i.TestAssignmentTitle) != "" &&
		i.TestAssignmentDescription != nil && strings.TrimSpace(*i.TestAssignmentDescription) != "" &&
		i.TestAssignmentDueDate != nil
}
