package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

func TestStaticRoleTableIsNested(t *testing.T) {
	owner := NewSet(RolePermissions(models.MemberRoleOwner)...)
	admin := NewSet(RolePermissions(models.MemberRoleAdmin)...)
	member := NewSet(RolePermissions(models.MemberRoleMember)...)

	require.Equal(t, IDs(), owner.Sorted())
	require.True(t, owner.Contains(admin))
	require.True(t, admin.Contains(member))
	require.False(t, admin.Has(ManageCompany))
	require.False(t, admin.Has(ManageRoles))
	require.Equal(t, []Permission{ViewAnalytics, ViewApplications, ViewMembers, ViewProjects}, member.Sorted())

	for role, perms := range staticRoleMap {
		missing, err := MissingDependencies(perms)
		require.NoError(t, err)
		require.Empty(t, missing, "role %s", role)
	}
}

func TestRolePermissionsReturnsCopy(t *testing.T) {
	perms := RolePermissions(models.MemberRoleMember)
	perms[0] = ManageCompany
	require.NotContains(t, RolePermissions(models.MemberRoleMember), ManageCompany)
}

func TestGetMemberPermissions(t *testing.T) {
	t.Run("owner with extras", func(t *testing.T) {
		member := &models.CompanyMember{
			DefaultRole:      models.MemberRoleOwner.Ptr(),
			ExtraPermissions: datatypes.JSONSlice[string]{"VIEW_MEMBERS"},
		}
		require.Equal(t, IDs(), GetMemberPermissions(member).Sorted())
	})

	t.Run("member with extras", func(t *testing.T) {
		member := &models.CompanyMember{
			DefaultRole:      models.MemberRoleMember.Ptr(),
			ExtraPermissions: datatypes.JSONSlice[string]{"INVITE_MEMBERS"},
		}
		set := GetMemberPermissions(member)
		require.True(t, set.Has(InviteMembers))
		require.True(t, set.Has(ViewMembers))
		require.False(t, set.Has(RemoveMembers))
	})

	t.Run("custom role replaces default table", func(t *testing.T) {
		member := &models.CompanyMember{
			DefaultRole:      models.MemberRoleOwner.Ptr(),
			CustomRole:       &models.CustomRole{Permissions: datatypes.JSONSlice[string]{"VIEW_APPLICATIONS"}},
			ExtraPermissions: datatypes.JSONSlice[string]{"VIEW_PROJECTS"},
		}
		require.Equal(t, []Permission{ViewApplications, ViewProjects}, GetMemberPermissions(member).Sorted())
	})

	t.Run("role-less membership yields extras only", func(t *testing.T) {
		member := &models.CompanyMember{ExtraPermissions: datatypes.JSONSlice[string]{"VIEW_ANALYTICS"}}
		require.Equal(t, []Permission{ViewAnalytics}, GetMemberPermissions(member).Sorted())
	})

	t.Run("unknown identifiers are dropped", func(t *testing.T) {
		member := &models.CompanyMember{
			CustomRole:       &models.CustomRole{Permissions: datatypes.JSONSlice[string]{"ROOT"}},
			ExtraPermissions: datatypes.JSONSlice[string]{"view_members"},
		}
		require.Empty(t, GetMemberPermissions(member))
	})

	require.Empty(t, GetMemberPermissions(nil))
}

func TestParse(t *testing.T) {
	ids, err := Parse([]string{" view_members ", "INVITE_MEMBERS", "VIEW_MEMBERS", ""})
	require.NoError(t, err)
	require.Equal(t, []Permission{InviteMembers, ViewMembers}, ids)

	_, err = Parse([]string{"DROP_TABLES"})
	require.ErrorIs(t, err, ErrUnknownPermission)

	_, err = Parse([]string{"MANAGE_APPLICATIONS"})
	var missing *MissingDependencyError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, []Permission{ViewApplications}, missing.Missing)
	require.Contains(t, err.Error(), "VIEW_APPLICATIONS")

	require.Equal(t, []string{"VIEW_MEMBERS"}, Strings([]Permission{ViewMembers}))
}

func TestValidateMembershipRole(t *testing.T) {
	roleID := "role-1"
	empty := ""
	invalid := models.MemberRole("SUPERUSER")

	require.NoError(t, ValidateMembershipRole(models.MemberRoleAdmin.Ptr(), nil))
	require.NoError(t, ValidateMembershipRole(nil, &roleID))
	require.ErrorIs(t, ValidateMembershipRole(nil, nil), ErrRolelessMembership)
	require.ErrorIs(t, ValidateMembershipRole(nil, &empty), ErrRolelessMembership)
	require.ErrorIs(t, ValidateMembershipRole(&invalid, nil), ErrRolelessMembership)
}
