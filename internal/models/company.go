package models

import "time"

// Company is an employer account owning members, invitations and custom roles.
type Company struct {
	BaseModel

	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	OwnerID     string `gorm:"size:36;uniqueIndex;not null" json:"owner_id"`
	Owner       *User  `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`

	// InvitationCode is stored in canonical XXXX-XXXX-XXXX-XXXX form.
	InvitationCode *string    `gorm:"size:19;uniqueIndex" json:"invitation_code,omitempty"`
	CodeEnabled    bool       `json:"code_enabled"`
	CodeExpiresAt  *time.Time `json:"code_expires_at,omitempty"`
	MaxTeamMembers *int       `json:"max_team_members,omitempty"`

	PolicyAccepted   bool       `json:"policy_accepted"`
	PolicyAcceptedAt *time.Time `json:"policy_accepted_at,omitempty"`
}
