package models

// ProjectStatus tracks an accepted internship through completion.
type ProjectStatus string

const (
	ProjectOngoing   ProjectStatus = "ONGOING"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

// Project is created exactly once per accepted application.
type Project struct {
	BaseModel

	ApplicationID string        `gorm:"size:36;not null;uniqueIndex" json:"application_id"`
	InternshipID  string        `gorm:"size:36;not null;index" json:"internship_id"`
	StudentID     string        `gorm:"size:36;not null;index" json:"student_id"`
	CompanyID     string        `gorm:"size:36;not null;index" json:"company_id"`
	Title         string        `gorm:"size:255" json:"title"`
	Status        ProjectStatus `gorm:"type:varchar(16);not null" json:"status"`
}
