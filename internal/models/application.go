package models

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// Application is a student's request to join an internship. At most one exists per
// (student, internship) pair.
type Application struct {
	BaseModel

	StudentID    string      `gorm:"size:36;not null;uniqueIndex:idx_applications_student_internship" json:"student_id"`
	Student      *User       `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	InternshipID string      `gorm:"size:36;not null;uniqueIndex:idx_applications_student_internship;index" json:"internship_id"`
	Internship   *Internship `gorm:"constraint:OnDelete:CASCADE" json:"internship,omitempty"`

	Status      ApplicationStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	CoverLetter *string           `gorm:"type:text" json:"cover_letter,omitempty"`
}
