package models

// UserRole is the platform level role of a user.
type UserRole string

const (
	UserRoleStudent    UserRole = "STUDENT"
	UserRoleCompany    UserRole = "COMPANY"
	UserRoleTeamMember UserRole = "TEAM_MEMBER"
)

// Valid reports whether r is one of the known platform roles.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleStudent, UserRoleCompany, UserRoleTeamMember:
		return true
	}
	return false
}

// User is the local anchor for an identity held by the external identity provider.
// Role stays empty until onboarding completes.
type User struct {
	BaseModel

	ExternalID         string   `gorm:"size:191;uniqueIndex;not null" json:"external_id"`
	Email              string   `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Name               string   `gorm:"size:255" json:"name"`
	Role               UserRole `gorm:"type:varchar(16);index" json:"role"`
	OnboardingComplete bool     `json:"onboarding_complete"`
}
