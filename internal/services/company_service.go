package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/identity"
	"github.com/SimoSabev/LynkSkill-sub003/internal/invitecode"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
	apperrors "github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/logger"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/textutil"
)

const codeGenerationAttempts = 5

// CompanyService creates companies and manages their invitation code.
type CompanyService struct {
	core Core
	log  *zap.Logger
}

// NewCompanyService constructs a CompanyService.
func NewCompanyService(core Core) (*CompanyService, error) {
	if err := core.validate("company service"); err != nil {
		return nil, err
	}
	return &CompanyService{core: core, log: logger.WithModule("companies")}, nil
}

// CreateCompanyInput holds the fields of a new company.
type CreateCompanyInput struct {
	Name           string
	Description    string
	MaxTeamMembers *int
	PolicyAccepted bool
}

// CompanyView is a company with its current active member count.
type CompanyView struct {
	*models.Company
	MemberCount int64 `json:"member_count"`
}

// CodeSettingsInput updates the invitation code. Nil fields are left unchanged; the Clear flags
// remove an expiry or a member cap.
type CodeSettingsInput struct {
	Enabled        *bool
	ExpiresAt      *time.Time
	ClearExpiry    bool
	MaxTeamMembers *int
	ClearCap       bool
}

// Create registers a company owned by the caller. The caller becomes its OWNER member and is
// promoted to the COMPANY platform role. An enabled invitation code is generated.
func (s *CompanyService) Create(ctx context.Context, p *auth.Principal, in CreateCompanyInput) (*models.Company, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if p.IsStudent() {
		return nil, apperrors.ErrPermissionDenied.WithMessage("Student accounts cannot create a company")
	}

	name := textutil.PlainText(in.Name)
	if name == "" {
		return nil, apperrors.NewValidation("Company name is required")
	}
	if in.MaxTeamMembers != nil && *in.MaxTeamMembers < 1 {
		return nil, apperrors.NewValidation("Member limit must be at least 1")
	}

	if _, err := s.core.Repos.Companies.GetByOwner(ctx, p.UserID); err == nil {
		return nil, ErrCompanyOwner
	} else if !repository.IsNotFound(err) {
		return nil, internal(err)
	}
	if _, err := s.core.Repos.Members.FindActiveByUser(ctx, p.UserID); err == nil {
		return nil, ErrAlreadyMember
	} else if !repository.IsNotFound(err) {
		return nil, internal(err)
	}

	now := s.core.now()
	company := &models.Company{
		Name:           name,
		Description:    textutil.PlainText(in.Description),
		OwnerID:        p.UserID,
		CodeEnabled:    true,
		MaxTeamMembers: in.MaxTeamMembers,
		PolicyAccepted: in.PolicyAccepted,
	}
	if in.PolicyAccepted {
		company.PolicyAcceptedAt = &now
	}

	err := s.core.inTx(ctx, func(repos *repository.Repositories) error {
		code, err := uniqueCode(ctx, repos.Companies)
		if err != nil {
			return err
		}
		company.InvitationCode = &code

		if err := repos.Companies.Create(ctx, company); err != nil {
			if repository.IsDuplicate(err) {
				return ErrCompanyOwner
			}
			return err
		}
		if err := createActiveMembership(ctx, repos, &models.CompanyMember{
			CompanyID:        company.ID,
			UserID:           p.UserID,
			DefaultRole:      models.MemberRoleOwner.Ptr(),
			ExtraPermissions: []string{},
			Status:           models.MemberStatusActive,
			JoinedAt:         now,
		}); err != nil {
			return err
		}
		return repos.Users.UpdateRole(ctx, p.UserID, models.UserRoleCompany)
	})
	if err != nil {
		return nil, internal(err)
	}

	s.core.invalidate(ctx, s.log, p.UserID)
	s.core.syncMetadata(ctx, s.log, p.ExternalID, identity.PublicMetadata{
		Role:               models.UserRoleCompany,
		OnboardingComplete: true,
	})
	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: company.ID,
		Action:    "company.create",
		Resource:  "company:" + company.ID,
		Result:    AuditSuccess,
	})
	return company, nil
}

// Get returns a company to one of its active members.
func (s *CompanyService) Get(ctx context.Context, p *auth.Principal, companyID string) (*CompanyView, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := s.core.Permissions.Require(ctx, p.UserID, companyID, permissions.ViewMembers); err != nil {
		return nil, err
	}

	company, err := s.core.Repos.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, lookupError(err, ErrCompanyNotFound)
	}
	count, err := s.core.Repos.Members.CountActive(ctx, companyID)
	if err != nil {
		return nil, internal(err)
	}
	return &CompanyView{Company: company, MemberCount: count}, nil
}

// RegenerateCode replaces the invitation code. The previous code stops working immediately.
func (s *CompanyService) RegenerateCode(ctx context.Context, p *auth.Principal, companyID string) (*models.Company, error) {
	ctx = ensureContext(ctx)
	company, err := s.loadForCodeChange(ctx, p, companyID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
		code, genErr := invitecode.Generate()
		if genErr != nil {
			return nil, apperrors.Wrap(genErr, "Failed to generate invitation code")
		}
		company.InvitationCode = &code

		err = s.core.Repos.Companies.Update(ctx, company)
		if err == nil {
			break
		}
		if !repository.IsDuplicate(err) {
			return nil, internal(err)
		}
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to allocate a unique invitation code")
	}

	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: companyID,
		Action:    "company.code_regenerate",
		Resource:  "company:" + companyID,
		Result:    AuditSuccess,
	})
	return company, nil
}

// UpdateCodeSettings enables or disables the code and adjusts its expiry and member cap.
func (s *CompanyService) UpdateCodeSettings(ctx context.Context, p *auth.Principal, companyID string, in CodeSettingsInput) (*models.Company, error) {
	ctx = ensureContext(ctx)
	company, err := s.loadForCodeChange(ctx, p, companyID)
	if err != nil {
		return nil, err
	}

	if in.Enabled != nil {
		company.CodeEnabled = *in.Enabled
	}
	switch {
	case in.ClearExpiry:
		company.CodeExpiresAt = nil
	case in.ExpiresAt != nil:
		expiry := in.ExpiresAt.UTC()
		if !expiry.After(s.core.now()) {
			return nil, apperrors.NewValidation("Code expiry must be in the future")
		}
		company.CodeExpiresAt = &expiry
	}
	switch {
	case in.ClearCap:
		company.MaxTeamMembers = nil
	case in.MaxTeamMembers != nil:
		if *in.MaxTeamMembers < 1 {
			return nil, apperrors.NewValidation("Member limit must be at least 1")
		}
		limit := *in.MaxTeamMembers
		company.MaxTeamMembers = &limit
	}

	if err := s.core.Repos.Companies.Update(ctx, company); err != nil {
		return nil, internal(err)
	}

	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: companyID,
		Action:    "company.code_update",
		Resource:  "company:" + companyID,
		Result:    AuditSuccess,
		Metadata: map[string]any{
			"enabled":          company.CodeEnabled,
			"expires_at":       company.CodeExpiresAt,
			"max_team_members": company.MaxTeamMembers,
		},
	})
	return company, nil
}

func (s *CompanyService) loadForCodeChange(ctx context.Context, p *auth.Principal, companyID string) (*models.Company, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	companyID = strings.TrimSpace(companyID)
	if err := s.core.Permissions.Require(ctx, p.UserID, companyID, permissions.ManageCompany); err != nil {
		return nil, err
	}
	company, err := s.core.Repos.Companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, lookupError(err, ErrCompanyNotFound)
	}
	return company, nil
}

// uniqueCode draws codes until one is not taken.
func uniqueCode(ctx context.Context, companies repository.CompanyRepository) (string, error) {
	for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
		code, err := invitecode.Generate()
		if err != nil {
			return "", err
		}
		if _, err := companies.GetByCode(ctx, code); repository.IsNotFound(err) {
			return code, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", apperrors.ErrInternal.WithMessage("Failed to allocate a unique invitation code")
}
