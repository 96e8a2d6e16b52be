package models

import "time"

// CompanyInvitation is a single-use, per-email invitation. Only the SHA-256 of the
// token is stored, so rotating the hash invalidates any previously issued token.
type CompanyInvitation struct {
	BaseModel

	CompanyID string   `gorm:"size:36;not null;index" json:"company_id"`
	Company   *Company `gorm:"constraint:OnDelete:CASCADE" json:"company,omitempty"`
	Email     string   `gorm:"size:191;not null;index" json:"email"`

	DefaultRole  *MemberRole `gorm:"type:varchar(16)" json:"default_role,omitempty"`
	CustomRoleID *string     `gorm:"size:36" json:"custom_role_id,omitempty"`

	TokenHash  string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  time.Time  `gorm:"index" json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`
	AcceptedBy *string    `gorm:"size:36" json:"accepted_by,omitempty"`
	InvitedBy  string     `gorm:"size:36;not null" json:"invited_by"`
}

// InvitationStatus is the derived lifecycle state of an invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

// StatusAt derives the invitation status at the supplied instant.
func (i *CompanyInvitation) StatusAt(now time.Time) InvitationStatus {
	switch {
	case i.AcceptedAt != nil:
		return InvitationAccepted
	case i.ExpiresAt.Before(now):
		return InvitationExpired
	default:
		return InvitationPending
	}
}
