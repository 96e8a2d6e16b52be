package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auditctx"
	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/identity"
	"github.com/SimoSabev/LynkSkill-sub003/internal/invitecode"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
	apperrors "github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/logger"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/metrics"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/textutil"
)

// PreviewDescriptionLimit is the number of runes of a company description shown in a preview.
const PreviewDescriptionLimit = 200

// CodePreview is what a prospective member sees before joining with a code.
type CodePreview struct {
	CompanyID      string `json:"company_id"`
	CompanyName    string `json:"company_name"`
	Description    string `json:"description"`
	MemberCount    int64  `json:"member_count"`
	MaxTeamMembers *int   `json:"max_team_members,omitempty"`
}

// CodeJoinService lets users join a company with its shared invitation code.
type CodeJoinService struct {
	core Core
	log  *zap.Logger
}

// NewCodeJoinService constructs a CodeJoinService.
func NewCodeJoinService(core Core) (*CodeJoinService, error) {
	if err := core.validate("code join service"); err != nil {
		return nil, err
	}
	return &CodeJoinService{core: core, log: logger.WithModule("company_codes")}, nil
}

// Preview evaluates raw for the caller without changing anything. Failures are distinct and
// reported in this order: caller eligibility, code format, unknown code, disabled code, expired
// code, full company.
func (s *CodeJoinService) Preview(ctx context.Context, p *auth.Principal, raw string) (*CodePreview, error) {
	ctx = ensureContext(ctx)
	company, count, err := s.evaluate(ctx, p, raw)
	if err != nil {
		return nil, err
	}

	return &CodePreview{
		CompanyID:      company.ID,
		CompanyName:    company.Name,
		Description:    textutil.Truncate(company.Description, PreviewDescriptionLimit),
		MemberCount:    count,
		MaxTeamMembers: company.MaxTeamMembers,
	}, nil
}

// Join repeats the preview checks and then, in one transaction holding the company row lock,
// re-counts members, creates a MEMBER membership, promotes the caller to TEAM_MEMBER and
// appends the join record.
func (s *CodeJoinService) Join(ctx context.Context, p *auth.Principal, raw string) (*models.CompanyMember, error) {
	ctx = ensureContext(ctx)
	company, _, err := s.evaluate(ctx, p, raw)
	if err != nil {
		s.observe(err)
		return nil, err
	}

	now := s.core.now()
	var (
		member   *models.CompanyMember
		userRole models.UserRole
		userName string
	)
	err = s.core.inTx(ctx, func(repos *repository.Repositories) error {
		locked, err := repos.Companies.GetByIDForUpdate(ctx, company.ID)
		if err != nil {
			return lookupError(err, ErrCompanyNotFound)
		}
		if err := checkCode(locked, stringValue(company.InvitationCode), now); err != nil {
			return err
		}
		count, err := repos.Members.CountActive(ctx, locked.ID)
		if err != nil {
			return err
		}
		if locked.MaxTeamMembers != nil && count >= int64(*locked.MaxTeamMembers) {
			return ErrCompanyFull
		}

		member = &models.CompanyMember{
			CompanyID:        locked.ID,
			UserID:           p.UserID,
			DefaultRole:      models.MemberRoleMember.Ptr(),
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
		userName = user.Name
		userRole = user.Role
		if user.Role != models.UserRoleCompany {
			userRole = models.UserRoleTeamMember
			if err := repos.Users.UpdateRole(ctx, p.UserID, userRole); err != nil {
				return err
			}
		}

		return repos.CodeJoins.Create(ctx, &models.CompanyCodeJoin{
			CompanyID: locked.ID,
			UserID:    p.UserID,
			JoinedAt:  now,
			IPAddress: auditctx.IPAddress(ctx),
		})
	})
	if err != nil {
		err = internal(err)
		s.observe(err)
		return nil, err
	}
	s.observe(nil)

	s.core.invalidate(ctx, s.log, p.UserID)
	s.core.syncMetadata(ctx, s.log, p.ExternalID, identity.PublicMetadata{
		Role:               userRole,
		OnboardingComplete: true,
	})
	s.core.notify(ctx, s.log, company.OwnerID, MemberJoinedByCode{
		CompanyID: company.ID,
		UserID:    p.UserID,
		UserName:  userName,
	})
	s.core.publish(ctx, s.log, AggregateCompany, company.ID, EventMemberJoinedByCode, map[string]any{
		"user_id":   p.UserID,
		"member_id": member.ID,
	})
	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: company.ID,
		Action:    "company.code_join",
		Resource:  "company:" + company.ID,
		Result:    AuditSuccess,
	})

	return member, nil
}

func (s *CodeJoinService) evaluate(ctx context.Context, p *auth.Principal, raw string) (*models.Company, int64, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, 0, err
	}
	if err := s.checkEligibility(ctx, p); err != nil {
		return nil, 0, err
	}
	if !invitecode.IsValidFormat(raw) {
		return nil, 0, ErrCodeInvalidFormat
	}

	code := invitecode.Normalize(raw)
	company, err := s.core.Repos.Companies.GetByCode(ctx, code)
	if err != nil {
		return nil, 0, lookupError(err, ErrCompanyNotFound)
	}

	now := s.core.now()
	if err := checkCode(company, code, now); err != nil {
		return nil, 0, err
	}

	count, err := s.core.Repos.Members.CountActive(ctx, company.ID)
	if err != nil {
		return nil, 0, internal(err)
	}
	if company.MaxTeamMembers != nil && count >= int64(*company.MaxTeamMembers) {
		return nil, 0, ErrCompanyFull
	}
	return company, count, nil
}

func (s *CodeJoinService) checkEligibility(ctx context.Context, p *auth.Principal) error {
	if _, err := s.core.Repos.Members.FindActiveByUser(ctx, p.UserID); err == nil {
		return ErrAlreadyMember
	} else if !repository.IsNotFound(err) {
		return internal(err)
	}
	if p.IsStudent() {
		return ErrStudentCannotJoin
	}
	if _, err := s.core.Repos.Companies.GetByOwner(ctx, p.UserID); err == nil {
		return ErrCompanyOwner
	} else if !repository.IsNotFound(err) {
		return internal(err)
	}
	return nil
}

func (s *CodeJoinService) observe(err error) {
	if err == nil {
		metrics.CodeJoins.WithLabelValues("joined").Inc()
		return
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		metrics.CodeJoins.WithLabelValues(appErr.Code).Inc()
		return
	}
	metrics.CodeJoins.WithLabelValues("error").Inc()
}

// checkCode verifies that company still accepts code at now. The code may have been rotated,
// disabled or expired since the caller looked it up.
func checkCode(company *models.Company, code string, now time.Time) error {
	if company.InvitationCode == nil || *company.InvitationCode != code {
		return ErrCompanyNotFound
	}
	if !company.CodeEnabled {
		return ErrCodeDisabled
	}
	if invitecode.IsExpired(company.CodeExpiresAt, now) {
		return ErrCodeExpired
	}
	return nil
}
