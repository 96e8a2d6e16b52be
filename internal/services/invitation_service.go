package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/identity"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/crypto"
	apperrors "github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/logger"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/mail"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/metrics"
)

const (
	defaultInvitationExpiry     = 7 * 24 * time.Hour
	defaultInvitationTokenBytes = 32
)

// InvitationOption customises InvitationService behaviour.
type InvitationOption func(*InvitationService)

// WithInvitationBaseURL configures the base URL used to build accept links.
func WithInvitationBaseURL(url string) InvitationOption {
	return func(s *InvitationService) {
		s.baseURL = strings.TrimRight(strings.TrimSpace(url), "/")
	}
}

// WithInvitationExpiry overrides the invitation lifetime.
func WithInvitationExpiry(d time.Duration) InvitationOption {
	return func(s *InvitationService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// InvitationService issues and redeems per-email company invitations.
type InvitationService struct {
	core    Core
	mailer  mail.Mailer
	baseURL string
	expiry  time.Duration
	log     *zap.Logger
}

// NewInvitationService constructs an InvitationService. mailer may be nil.
func NewInvitationService(core Core, mailer mail.Mailer, opts ...InvitationOption) (*InvitationService, error) {
	if err := core.validate("invitation service"); err != nil {
		return nil, err
	}

	svc := &InvitationService{
		core:   core,
		mailer: mailer,
		expiry: defaultInvitationExpiry,
		log:    logger.WithModule("invitations"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// IssueInvitationInput describes a new invitation. Exactly one of Role and CustomRoleID is set.
type IssueInvitationInput struct {
	CompanyID    string
	Email        string
	Role         *models.MemberRole
	CustomRoleID *string
}

// IssuedInvitation returns the stored invitation together with the one-time raw token.
type IssuedInvitation struct {
	Invitation *models.CompanyInvitation `json:"invitation"`
	Token      string                    `json:"-"`
	Link       string                    `json:"link"`
}

// InvitationView is an invitation with its derived status.
type InvitationView struct {
	*models.CompanyInvitation
	Status models.InvitationStatus `json:"status"`
}

// InvitationPreview is what an invitee sees on the accept page before signing in.
type InvitationPreview struct {
	CompanyID   string                  `json:"company_id"`
	CompanyName string                  `json:"company_name"`
	Email       string                  `json:"email"`
	Role        string                  `json:"role"`
	ExpiresAt   time.Time               `json:"expires_at"`
	Status      models.InvitationStatus `json:"status"`
}

// Issue creates an invitation for email. Requires INVITE_MEMBERS in the company.
func (s *InvitationService) Issue(ctx context.Context, p *auth.Principal, in IssueInvitationInput) (*IssuedInvitation, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	companyID := strings.TrimSpace(in.CompanyID)
	if err := s.core.Permissions.Require(ctx, p.UserID, companyID, permissions.InviteMembers); err != nil {
		return nil, err
	}

	email, ok := normaliseEmail(in.Email)
	if !ok {
		return nil, apperrors.NewValidation("A valid email address is required")
	}

	roleName, err := s.resolveInvitedRole(ctx, companyID, in.Role, in.CustomRoleID)
	if err != nil {
		return nil, err
	}

	company, err := s.core.Repos.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, lookupError(err, ErrCompanyNotFound)
	}

	now := s.core.now()
	if _, err := s.core.Repos.Invitations.FindPending(ctx, companyID, email, now); err == nil {
		return nil, ErrInvitationPending
	} else if !repository.IsNotFound(err) {
		return nil, internal(err)
	}

	invitee, err := s.core.Repos.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if member, mErr := s.core.Repos.Members.FindActiveByUser(ctx, invitee.ID); mErr == nil && member.CompanyID == companyID {
			return nil, ErrAlreadyMember
		}
	case repository.IsNotFound(err):
		invitee = nil
	default:
		return nil, internal(err)
	}

	token, err := crypto.GenerateToken(defaultInvitationTokenBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to generate invitation token")
	}

	invitation := &models.CompanyInvitation{
		CompanyID:    companyID,
		Email:        email,
		DefaultRole:  in.Role,
		CustomRoleID: trimmedPtr(in.CustomRoleID),
		TokenHash:    crypto.HashToken(token),
		IssuedAt:     now,
		ExpiresAt:    now.Add(s.expiry),
		InvitedBy:    p.UserID,
	}
	if invitation.CustomRoleID != nil {
		invitation.DefaultRole = nil
	}
	if err := s.core.Repos.Invitations.Create(ctx, invitation); err != nil {
		if repository.IsDuplicate(err) {
			return nil, ErrInvitationPending
		}
		return nil, internal(err)
	}
	invitation.Company = company
	metrics.Invitations.WithLabelValues("issued").Inc()

	link := s.acceptLink(token)
	s.sendEmail(ctx, p, invitation, company.Name, roleName, token, link, false)
	if invitee != nil {
		s.core.notify(ctx, s.log, invitee.ID, InvitationSent{
			InvitationID: invitation.ID,
			CompanyID:    companyID,
			CompanyName:  company.Name,
			Role:         roleName,
			ExpiresAt:    invitation.ExpiresAt,
		})
	}
	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: companyID,
		Action:    "invitation.issue",
		Resource:  "invitation:" + invitation.ID,
		Result:    AuditSuccess,
		Metadata:  map[string]any{"email": email, "role": roleName},
	})

	return &IssuedInvitation{Invitation: invitation, Token: token, Link: link}, nil
}

// Resend rotates the token of a pending invitation and emails it again. Any previously issued
// token stops working.
func (s *InvitationService) Resend(ctx context.Context, p *auth.Principal, invitationID string) (*IssuedInvitation, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	invitation, err := s.core.Repos.Invitations.GetByID(ctx, invitationID)
	if err != nil {
		return nil, lookupError(err, ErrInvitationNotFound)
	}
	if err := s.core.Permissions.Require(ctx, p.UserID, invitation.CompanyID, permissions.InviteMembers); err != nil {
		return nil, err
	}
	if invitation.AcceptedAt != nil {
		return nil, ErrInvitationAccepted
	}

	token, err := crypto.GenerateToken(defaultInvitationTokenBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to generate invitation token")
	}

	now := s.core.now()
	hash := crypto.HashToken(token)
	if err := s.core.Repos.Invitations.RotateToken(ctx, invitation.ID, hash, now, now.Add(s.expiry)); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvitationAccepted
		}
		return nil, internal(err)
	}
	invitation.TokenHash = hash
	invitation.IssuedAt = now
	invitation.ExpiresAt = now.Add(s.expiry)
	metrics.Invitations.WithLabelValues("resent").Inc()

	companyName := ""
	if invitation.Company != nil {
		companyName = invitation.Company.Name
	}
	link := s.acceptLink(token)
	s.sendEmail(ctx, p, invitation, companyName, s.roleLabel(ctx, invitation), token, link, true)
	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: invitation.CompanyID,
		Action:    "invitation.resend",
		Resource:  "invitation:" + invitation.ID,
		Result:    AuditSuccess,
	})

	return &IssuedInvitation{Invitation: invitation, Token: token, Link: link}, nil
}

// Accept redeems token for the caller. Checks run in a fixed order: unknown token, expiry,
// prior acceptance, email match, existing membership. The acceptance mark, the membership and
// the platform role promotion commit together.
func (s *InvitationService) Accept(ctx context.Context, p *auth.Principal, token string) (*models.CompanyMember, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvitationNotFound
	}

	invitation, err := s.core.Repos.Invitations.GetByTokenHash(ctx, crypto.HashToken(token))
	if err != nil {
		return nil, lookupError(err, ErrInvitationNotFound)
	}

	now := s.core.now()
	if invitation.ExpiresAt.Before(now) {
		return nil, ErrInvitationExpired
	}
	if invitation.AcceptedAt != nil {
		return nil, ErrInvitationAccepted
	}
	if !strings.EqualFold(strings.TrimSpace(p.Email), invitation.Email) {
		return nil, ErrInvitationEmailMismatch
	}
	if _, err := s.core.Repos.Members.FindActiveByUser(ctx, p.UserID); err == nil {
		return nil, ErrAlreadyMember
	} else if !repository.IsNotFound(err) {
		return nil, internal(err)
	}
	if err := permissions.ValidateMembershipRole(invitation.DefaultRole, invitation.CustomRoleID); err != nil {
		return nil, ErrRolelessMembership.WithInternal(err)
	}

	var member *models.CompanyMember
	err = s.core.inTx(ctx, func(repos *repository.Repositories) error {
		if invitation.CustomRoleID != nil {
			role, err := repos.CustomRoles.GetByID(ctx, *invitation.CustomRoleID)
			if err != nil {
				return lookupError(err, ErrRoleNotFound)
			}
			if role.CompanyID != invitation.CompanyID {
				return ErrRoleNotFound
			}
		}

		accepted, err := repos.Invitations.MarkAccepted(ctx, invitation.ID, p.UserID, now)
		if err != nil {
			return err
		}
		if !accepted {
			return ErrInvitationAccepted
		}

		member = &models.CompanyMember{
			CompanyID:        invitation.CompanyID,
			UserID:           p.UserID,
			DefaultRole:      invitation.DefaultRole,
			CustomRoleID:     invitation.CustomRoleID,
			ExtraPermissions: []string{},
			Status:           models.MemberStatusActive,
			JoinedAt:         now,
		}
		if err := createActiveMembership(ctx, repos, member); err != nil {
			return err
		}

		user, err := repos.Users.GetByID(ctx, p.UserID)
		if err != nil {
			return lookupError(err, ErrUserNotFound)
		}
		if user.Role != models.UserRoleCompany {
			return repos.Users.UpdateRole(ctx, p.UserID, models.UserRoleCompany)
		}
		return nil
	})
	if err != nil {
		return nil, internal(err)
	}
	metrics.Invitations.WithLabelValues("accepted").Inc()

	s.core.invalidate(ctx, s.log, p.UserID)
	s.core.syncMetadata(ctx, s.log, p.ExternalID, identity.PublicMetadata{
		Role:               models.UserRoleCompany,
		OnboardingComplete: true,
	})
	s.core.notify(ctx, s.log, invitation.InvitedBy, InvitationAccepted{
		InvitationID: invitation.ID,
		CompanyID:    invitation.CompanyID,
		UserID:       p.UserID,
		Email:        invitation.Email,
	})
	s.core.publish(ctx, s.log, AggregateInvitation, invitation.ID, EventInvitationAccepted, map[string]any{
		"company_id": invitation.CompanyID,
		"user_id":    p.UserID,
		"member_id":  member.ID,
	})
	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: invitation.CompanyID,
		Action:    "invitation.accept",
		Resource:  "invitation:" + invitation.ID,
		Result:    AuditSuccess,
	})

	return member, nil
}

// List returns the company's invitations with derived status. Requires INVITE_MEMBERS.
func (s *InvitationService) List(ctx context.Context, p *auth.Principal, companyID string) ([]InvitationView, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := s.core.Permissions.Require(ctx, p.UserID, companyID, permissions.InviteMembers); err != nil {
		return nil, err
	}

	rows, err := s.core.Repos.Invitations.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, internal(err)
	}

	now := s.core.now()
	views := make([]InvitationView, len(rows))
	for i := range rows {
		views[i] = InvitationView{CompanyInvitation: &rows[i], Status: rows[i].StatusAt(now)}
	}
	return views, nil
}

// Revoke deletes an invitation that has not been accepted.
func (s *InvitationService) Revoke(ctx context.Context, p *auth.Principal, invitationID string) error {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return err
	}

	invitation, err := s.core.Repos.Invitations.GetByID(ctx, invitationID)
	if err != nil {
		return lookupError(err, ErrInvitationNotFound)
	}
	if err := s.core.Permissions.Require(ctx, p.UserID, invitation.CompanyID, permissions.InviteMembers); err != nil {
		return err
	}
	if invitation.AcceptedAt != nil {
		return ErrInvitationAccepted
	}

	if err := s.core.Repos.Invitations.Delete(ctx, invitation.ID); err != nil {
		return lookupError(err, ErrInvitationNotFound)
	}
	metrics.Invitations.WithLabelValues("revoked").Inc()

	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: invitation.CompanyID,
		Action:    "invitation.revoke",
		Resource:  "invitation:" + invitation.ID,
		Result:    AuditSuccess,
	})
	return nil
}

// Lookup resolves a raw token to a public preview. It needs no principal.
func (s *InvitationService) Lookup(ctx context.Context, token string) (*InvitationPreview, error) {
	ctx = ensureContext(ctx)
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvitationNotFound
	}

	invitation, err := s.core.Repos.Invitations.GetByTokenHash(ctx, crypto.HashToken(token))
	if err != nil {
		return nil, lookupError(err, ErrInvitationNotFound)
	}

	preview := &InvitationPreview{
		CompanyID: invitation.CompanyID,
		Email:     invitation.Email,
		Role:      s.roleLabel(ctx, invitation),
		ExpiresAt: invitation.ExpiresAt,
		Status:    invitation.StatusAt(s.core.now()),
	}
	if invitation.Company != nil {
		preview.CompanyName = invitation.Company.Name
	}
	return preview, nil
}

// resolveInvitedRole validates the role choice and returns its display name.
func (s *InvitationService) resolveInvitedRole(ctx context.Context, companyID string, role *models.MemberRole, customRoleID *string) (string, error) {
	customRoleID = trimmedPtr(customRoleID)

	switch {
	case role != nil && customRoleID != nil:
		return "", apperrors.NewValidation("Choose either a role or a custom role, not both")
	case customRoleID != nil:
		custom, err := s.core.Repos.CustomRoles.GetByID(ctx, *customRoleID)
		if err != nil {
			return "", lookupError(err, ErrRoleNotFound)
		}
		if custom.CompanyID != companyID {
			return "", ErrRoleNotFound
		}
		return custom.Name, nil
	case role != nil:
		if *role == models.MemberRoleOwner {
			return "", apperrors.NewValidation("The owner role cannot be granted by invitation")
		}
		if !role.Valid() {
			return "", apperrors.NewValidation(fmt.Sprintf("Unknown role %q", *role))
		}
		return string(*role), nil
	default:
		return "", ErrRolelessMembership
	}
}

func (s *InvitationService) roleLabel(ctx context.Context, invitation *models.CompanyInvitation) string {
	if invitation.CustomRoleID != nil {
		if role, err := s.core.Repos.CustomRoles.GetByID(ctx, *invitation.CustomRoleID); err == nil {
			return role.Name
		}
		return "custom role"
	}
	if invitation.DefaultRole != nil {
		return string(*invitation.DefaultRole)
	}
	return ""
}

func (s *InvitationService) acceptLink(token string) string {
	path := "/invitations/accept?token=" + url.QueryEscape(token)
	if s.baseURL == "" {
		return path
	}
	return s.baseURL + path
}

func (s *InvitationService) sendEmail(ctx context.Context, p *auth.Principal, invitation *models.CompanyInvitation, companyName, roleName, token, link string, resent bool) {
	if s.mailer == nil {
		return
	}

	inviterName := ""
	if inviter, err := s.core.Repos.Users.GetByID(ctx, p.UserID); err == nil {
		inviterName = inviter.Name
	}

	msg, err := mail.InvitationEmail{
		To:          invitation.Email,
		CompanyName: companyName,
		InviterName: inviterName,
		RoleName:    roleName,
		Link:        link,
		Token:       token,
		ExpiresAt:   invitation.ExpiresAt,
		Resent:      resent,
	}.Message()
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		metrics.SideEffectFailures.WithLabelValues("email").Inc()
		s.log.Warn("send invitation email",
			zap.String("invitation_id", invitation.ID),
			zap.String("email", invitation.Email),
			zap.Error(err))
	}
}
