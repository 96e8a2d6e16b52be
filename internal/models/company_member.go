package models

import (
	"time"

	"gorm.io/datatypes"
)

// MemberRole is one of the built-in company roles.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "OWNER"
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

// Valid reports whether r is a known built-in role.
func (r MemberRole) Valid() bool {
	switch r {
	case MemberRoleOwner, MemberRoleAdmin, MemberRoleMember:
		return true
	}
	return false
}

// Ptr returns a pointer to a copy of r.
func (r MemberRole) Ptr() *MemberRole {
	return &r
}

// MemberStatus tracks whether a membership currently grants access.
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "ACTIVE"
	MemberStatusSuspended MemberStatus = "SUSPENDED"
	MemberStatusLeft      MemberStatus = "LEFT"
)

// CompanyMember joins a user to a company. A custom role, when set, replaces the default
// role's permission table entirely.
type CompanyMember struct {
	BaseModel

	CompanyID string   `gorm:"size:36;not null;index" json:"company_id"`
	Company   *Company `gorm:"constraint:OnDelete:CASCADE" json:"company,omitempty"`
	UserID    string   `gorm:"size:36;not null;index" json:"user_id"`
	User      *User    `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`

	DefaultRole      *MemberRole                 `gorm:"type:varchar(16)" json:"default_role,omitempty"`
	CustomRoleID     *string                     `gorm:"size:36;index" json:"custom_role_id,omitempty"`
	CustomRole       *CustomRole                 `json:"custom_role,omitempty"`
	ExtraPermissions datatypes.JSONSlice[string] `json:"extra_permissions"`

	Status   MemberStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	JoinedAt time.Time    `json:"joined_at"`
}

// IsActive reports whether the membership currently grants access.
func (m *CompanyMember) IsActive() bool {
	return m != nil && m.Status == MemberStatusActive
}

// IsOwner reports whether the membership carries the built-in OWNER role.
func (m *CompanyMember) IsOwner() bool {
	return m != nil && m.DefaultRole != nil && *m.DefaultRole == MemberRoleOwner
}
