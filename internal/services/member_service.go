package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
	apperrors "github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/logger"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/textutil"
)

// MemberService manages company memberships and custom roles.
type MemberService struct {
	core Core
	log  *zap.Logger
}

// NewMemberService constructs a MemberService.
func NewMemberService(core Core) (*MemberService, error) {
	if err := core.validate("member service"); err != nil {
		return nil, err
	}
	return &MemberService{core: core, log: logger.WithModule("members")}, nil
}

// ChangeRoleInput assigns a new role to a member. Exactly one of Role and CustomRoleID is set.
// ExtraPermissions, when non-nil, replaces the member's extra grants.
type ChangeRoleInput struct {
	Role             *models.MemberRole
	CustomRoleID     *string
	ExtraPermissions *[]string
}

// RoleInput describes a custom role.
type RoleInput struct {
	Name        string
	Color       string
	Permissions []string
}

// EffectivePermissions is the caller's resolved membership, as returned by /me/permissions.
type EffectivePermissions struct {
	CompanyID    string             `json:"company_id,omitempty"`
	MemberID     string             `json:"member_id,omitempty"`
	DefaultRole  *models.MemberRole `json:"default_role,omitempty"`
	CustomRoleID *string            `json:"custom_role_id,omitempty"`
	Permissions  []string           `json:"permissions"`
}

// ListMembers returns the company's active members. Requires VIEW_MEMBERS.
func (s *MemberService) ListMembers(ctx context.Context, p *auth.Principal, companyID string) ([]models.CompanyMember, error) {
	ctx = ensureContext(ctx)
	if err := s.require(ctx, p, companyID, permissions.ViewMembers); err != nil {
		return nil, err
	}

	members, err := s.core.Repos.Members.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, internal(err)
	}
	return members, nil
}

// ChangeRole reassigns a member's role. Requires MANAGE_ROLES. The owner's membership cannot be
// changed and OWNER cannot be granted.
func (s *MemberService) ChangeRole(ctx context.Context, p *auth.Principal, companyID, memberID string, in ChangeRoleInput) (*models.CompanyMember, error) {
	ctx = ensureContext(ctx)
	if err := s.require(ctx, p, companyID, permissions.ManageRoles); err != nil {
		return nil, err
	}

	member, err := s.loadMember(ctx, companyID, memberID)
	if err != nil {
		return nil, err
	}
	if member.IsOwner() {
		return nil, ErrOwnerImmutable
	}

	customRoleID := trimmedPtr(in.CustomRoleID)
	switch {
	case in.Role != nil && customRoleID != nil:
		return nil, apperrors.NewValidation("Choose either a role or a custom role, not both")
	case in.Role != nil && *in.Role == models.MemberRoleOwner:
		return nil, apperrors.NewValidation("The owner role cannot be assigned")
	case in.Role != nil && !in.Role.Valid():
		return nil, apperrors.NewValidation(fmt.Sprintf("Unknown role %q", *in.Role))
	}
	if err := permissions.ValidateMembershipRole(in.Role, customRoleID); err != nil {
		return nil, ErrRolelessMembership
	}
	if customRoleID != nil {
		role, err := s.core.Repos.CustomRoles.GetByID(ctx, *customRoleID)
		if err != nil {
			return nil, lookupError(err, ErrRoleNotFound)
		}
		if role.CompanyID != companyID {
			return nil, ErrRoleNotFound
		}
		member.CustomRole = role
	} else {
		member.CustomRole = nil
	}

	if in.ExtraPermissions != nil {
		extra, err := parsePermissions(*in.ExtraPermissions)
		if err != nil {
			return nil, err
		}
		member.ExtraPermissions = extra
	}
	member.DefaultRole = in.Role
	member.CustomRoleID = customRoleID

	if err := s.core.Repos.Members.Update(ctx, member); err != nil {
		return nil, internal(err)
	}

	s.core.invalidate(ctx, s.log, member.UserID)
	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: companyID,
		Action:    "member.change_role",
		Resource:  "member:" + member.ID,
		Result:    AuditSuccess,
		Metadata: map[string]any{
			"default_role":   member.DefaultRole,
			"custom_role_id": member.CustomRoleID,
		},
	})
	return member, nil
}

// RemoveMember ends a membership. Requires REMOVE_MEMBERS; the owner cannot be removed.
func (s *MemberService) RemoveMember(ctx context.Context, p *auth.Principal, companyID, memberID string) error {
	ctx = ensureContext(ctx)
	if err := s.require(ctx, p, companyID, permissions.RemoveMembers); err != nil {
		return err
	}

	member, err := s.loadMember(ctx, companyID, memberID)
	if err != nil {
		return err
	}
	if member.IsOwner() {
		return ErrOwnerImmutable
	}

	member.Status = models.MemberStatusLeft
	if err := s.core.Repos.Members.Update(ctx, member); err != nil {
		return internal(err)
	}

	s.core.invalidate(ctx, s.log, member.UserID)
	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: companyID,
		Action:    "member.remove",
		Resource:  "member:" + member.ID,
		Result:    AuditSuccess,
	})
	return nil
}

// MyPermissions returns the caller's effective permission set. A caller without a membership
// gets an empty set.
func (s *MemberService) MyPermissions(ctx context.Context, p *auth.Principal) (*EffectivePermissions, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	snap, err := s.core.Permissions.Snapshot(ctx, p.UserID)
	if errors.Is(err, permissions.ErrNoMembership) {
		return &EffectivePermissions{Permissions: []string{}}, nil
	}
	if err != nil {
		return nil, internal(err)
	}

	return &EffectivePermissions{
		CompanyID:    snap.CompanyID,
		MemberID:     snap.MemberID,
		DefaultRole:  snap.DefaultRole,
		CustomRoleID: snap.CustomRoleID,
		Permissions:  permissions.Strings(snap.Permissions),
	}, nil
}

// ListRoles returns the company's custom roles. Requires MANAGE_ROLES.
func (s *MemberService) ListRoles(ctx context.Context, p *auth.Principal, companyID string) ([]models.CustomRole, error) {
	ctx = ensureContext(ctx)
	if err := s.require(ctx, p, companyID, permissions.ManageRoles); err != nil {
		return nil, err
	}

	roles, err := s.core.Repos.CustomRoles.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, internal(err)
	}
	return roles, nil
}

// CreateRole adds a custom role. Every dependency of a listed permission must be listed too.
func (s *MemberService) CreateRole(ctx context.Context, p *auth.Principal, companyID string, in RoleInput) (*models.CustomRole, error) {
	ctx = ensureContext(ctx)
	if err := s.require(ctx, p, companyID, permissions.ManageRoles); err != nil {
		return nil, err
	}

	role := &models.CustomRole{CompanyID: companyID}
	if err := applyRoleInput(role, in); err != nil {
		return nil, err
	}
	if err := s.core.Repos.CustomRoles.Create(ctx, role); err != nil {
		if repository.IsDuplicate(err) {
			return nil, ErrRoleDuplicateName
		}
		return nil, internal(err)
	}

	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: companyID,
		Action:    "role.create",
		Resource:  "role:" + role.ID,
		Result:    AuditSuccess,
		Metadata:  map[string]any{"name": role.Name, "permissions": []string(role.Permissions)},
	})
	return role, nil
}

// UpdateRole replaces a custom role's name, color and permissions. Cached permissions of every
// holder are dropped.
func (s *MemberService) UpdateRole(ctx context.Context, p *auth.Principal, companyID, roleID string, in RoleInput) (*models.CustomRole, error) {
	ctx = ensureContext(ctx)
	if err := s.require(ctx, p, companyID, permissions.ManageRoles); err != nil {
		return nil, err
	}

	role, err := s.loadRole(ctx, companyID, roleID)
	if err != nil {
		return nil, err
	}
	if err := applyRoleInput(role, in); err != nil {
		return nil, err
	}
	if err := s.core.Repos.CustomRoles.Update(ctx, role); err != nil {
		if repository.IsDuplicate(err) {
			return nil, ErrRoleDuplicateName
		}
		return nil, internal(err)
	}

	holders, err := s.core.Repos.Members.ListUserIDsByCustomRole(ctx, role.ID)
	if err != nil {
		s.log.Warn("list custom role holders", zap.String("role_id", role.ID), zap.Error(err))
	}
	s.core.invalidate(ctx, s.log, holders...)

	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: companyID,
		Action:    "role.update",
		Resource:  "role:" + role.ID,
		Result:    AuditSuccess,
		Metadata:  map[string]any{"name": role.Name, "permissions": []string(role.Permissions)},
	})
	return role, nil
}

// DeleteRole removes a custom role that no active member holds and no open invitation offers.
// Former members that still reference it fall back to their default role.
func (s *MemberService) DeleteRole(ctx context.Context, p *auth.Principal, companyID, roleID string) error {
	ctx = ensureContext(ctx)
	if err := s.require(ctx, p, companyID, permissions.ManageRoles); err != nil {
		return err
	}

	role, err := s.loadRole(ctx, companyID, roleID)
	if err != nil {
		return err
	}
	err = s.core.inTx(ctx, func(repos *repository.Repositories) error {
		holders, err := repos.Members.CountByCustomRole(ctx, role.ID)
		if err != nil {
			return err
		}
		if holders > 0 {
			return ErrRoleInUse.WithMessage(fmt.Sprintf("Role is still assigned to %d member(s)", holders))
		}
		invited, err := repos.Invitations.CountUnacceptedByCustomRole(ctx, role.ID)
		if err != nil {
			return err
		}
		if invited > 0 {
			return ErrRoleInUse.WithMessage(fmt.Sprintf("Role is offered by %d open invitation(s)", invited))
		}
		if _, err := repos.Members.DetachCustomRole(ctx, role.ID); err != nil {
			return err
		}
		if err := repos.CustomRoles.Delete(ctx, role.ID); err != nil {
			return lookupError(err, ErrRoleNotFound)
		}
		return nil
	})
	if err != nil {
		return internal(err)
	}

	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: companyID,
		Action:    "role.delete",
		Resource:  "role:" + role.ID,
		Result:    AuditSuccess,
	})
	return nil
}

func (s *MemberService) require(ctx context.Context, p *auth.Principal, companyID string, perm permissions.Permission) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	return s.core.Permissions.Require(ctx, p.UserID, strings.TrimSpace(companyID), perm)
}

func (s *MemberService) loadMember(ctx context.Context, companyID, memberID string) (*models.CompanyMember, error) {
	member, err := s.core.Repos.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, lookupError(err, ErrMemberNotFound)
	}
	if member.CompanyID != companyID || !member.IsActive() {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

func (s *MemberService) loadRole(ctx context.Context, companyID, roleID string) (*models.CustomRole, error) {
	role, err := s.core.Repos.CustomRoles.GetByID(ctx, roleID)
	if err != nil {
		return nil, lookupError(err, ErrRoleNotFound)
	}
	if role.CompanyID != companyID {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

func applyRoleInput(role *models.CustomRole, in RoleInput) error {
	name := textutil.PlainText(in.Name)
	if name == "" {
		return apperrors.NewValidation("Role name is required")
	}
	perms, err := parsePermissions(in.Permissions)
	if err != nil {
		return err
	}
	if len(perms) == 0 {
		return apperrors.NewValidation("A role needs at least one permission")
	}

	role.Name = name
	role.Color = strings.TrimSpace(in.Color)
	role.Permissions = perms
	return nil
}

// parsePermissions validates raw identifiers and returns them in storage form.
func parsePermissions(raw []string) ([]string, error) {
	ids, err := permissions.Parse(raw)
	if err != nil {
		var missing *permissions.MissingDependencyError
		if errors.As(err, &missing) {
			return nil, apperrors.NewValidation(fmt.Sprintf("Permission set is incomplete: add %s",
				strings.Join(permissions.Strings(missing.Missing), ", ")))
		}
		return nil, apperrors.NewValidation(err.Error())
	}
	return permissions.Strings(ids), nil
}
