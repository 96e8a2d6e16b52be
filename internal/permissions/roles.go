package permissions

import (
	"errors"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

// staticRoleMap is the permission table of the built-in roles. OWNER ⊇ ADMIN ⊇ MEMBER is asserted in tests.
var staticRoleMap = map[models.MemberRole][]Permission{
	models.MemberRoleOwner: {
		ViewMembers, InviteMembers, RemoveMembers, ManageRoles, ManageCompany,
		CreateInternships, EditInternships, DeleteInternships,
		ViewApplications, ManageApplications,
		ViewProjects, ManageProjects, ManageExperiences,
		ViewAnalytics,
	},
	models.MemberRoleAdmin: {
		ViewMembers, InviteMembers, RemoveMembers,
		CreateInternships, EditInternships, DeleteInternships,
		ViewApplications, ManageApplications,
		ViewProjects, ManageProjects, ManageExperiences,
		ViewAnalytics,
	},
	models.MemberRoleMember: {
		ViewMembers, ViewApplications, ViewProjects, ViewAnalytics,
	},
}

// ErrRolelessMembership is returned when a membership carries neither a default nor a custom role.
var ErrRolelessMembership = errors.New("permission: membership requires a default role or a custom role")

// RolePermissions returns a copy of the static table entry for role.
func RolePermissions(role models.MemberRole) []Permission {
	return append([]Permission(nil), staticRoleMap[role]...)
}

// ValidateMembershipRole rejects memberships that would resolve to no role at all.
func ValidateMembershipRole(defaultRole *models.MemberRole, customRoleID *string) error {
	if customRoleID != nil && *customRoleID != "" {
		return nil
	}
	if defaultRole != nil && defaultRole.Valid() {
		return nil
	}
	return ErrRolelessMembership
}
