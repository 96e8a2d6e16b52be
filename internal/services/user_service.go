package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/identity"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
	apperrors "github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/logger"
)

// ErrEmailTaken is returned when a new identity presents an email another account already uses.
var ErrEmailTaken = apperrors.New(apperrors.KindConflict, "user.email_taken", "Another account already uses this email")

// UserService keeps the local user rows in step with the identity provider.
type UserService struct {
	core Core
	log  *zap.Logger
}

// NewUserService constructs a UserService. It needs no permission checker.
func NewUserService(core Core) (*UserService, error) {
	if core.Repos == nil {
		return nil, errors.New("user service: repositories are required")
	}
	return &UserService{core: core, log: logger.WithModule("users")}, nil
}

// Provision returns the local user for a verified identity, creating it on first sight and
// refreshing email and name afterwards.
func (s *UserService) Provision(ctx context.Context, id *auth.Identity) (*models.User, error) {
	ctx = ensureContext(ctx)
	if id == nil || strings.TrimSpace(id.ExternalID) == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	email := strings.ToLower(strings.TrimSpace(id.Email))

	user, err := s.core.Repos.Users.GetByExternalID(ctx, id.ExternalID)
	switch {
	case err == nil:
		return s.refresh(ctx, user, email, id)
	case !repository.IsNotFound(err):
		return nil, internal(err)
	}

	if email == "" {
		return nil, apperrors.ErrUnauthenticated.WithMessage("The identity token carries no email address")
	}
	user = &models.User{
		ExternalID: id.ExternalID,
		Email:      email,
		Name:       strings.TrimSpace(id.Name),
	}
	if id.Role.Valid() {
		user.Role = id.Role
		user.OnboardingComplete = true
	}
	if err := s.core.Repos.Users.Create(ctx, user); err != nil {
		if !repository.IsDuplicate(err) {
			return nil, internal(err)
		}
		existing, getErr := s.core.Repos.Users.GetByExternalID(ctx, id.ExternalID)
		if getErr != nil {
			return nil, ErrEmailTaken
		}
		return existing, nil
	}

	s.log.Info("user provisioned", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

func (s *UserService) refresh(ctx context.Context, user *models.User, email string, id *auth.Identity) (*models.User, error) {
	changed := false
	if email != "" && email != user.Email {
		user.Email = email
		changed = true
	}
	if name := strings.TrimSpace(id.Name); name != "" && name != user.Name {
		user.Name = name
		changed = true
	}
	if user.Role == "" && id.Role.Valid() {
		user.Role = id.Role
		user.OnboardingComplete = true
		changed = true
	}
	if !changed {
		return user, nil
	}

	if err := s.core.Repos.Users.Update(ctx, user); err != nil {
		if repository.IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, internal(err)
	}
	return user, nil
}

// PrincipalFor converts a local user into the principal handed to workflows.
func PrincipalFor(user *models.User) *auth.Principal {
	if user == nil {
		return nil
	}
	return &auth.Principal{
		UserID:     user.ID,
		ExternalID: user.ExternalID,
		Email:      user.Email,
		Role:       user.Role,
	}
}

// Me returns the caller's user row.
func (s *UserService) Me(ctx context.Context, p *auth.Principal) (*models.User, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	user, err := s.core.Repos.Users.GetByID(ensureContext(ctx), p.UserID)
	if err != nil {
		return nil, lookupError(err, ErrUserNotFound)
	}
	return user, nil
}

// CompleteOnboarding records the platform role a new user picked. Only STUDENT and COMPANY can
// be chosen; TEAM_MEMBER is granted by joining a company.
func (s *UserService) CompleteOnboarding(ctx context.Context, p *auth.Principal, role models.UserRole) (*models.User, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if role != models.UserRoleStudent && role != models.UserRoleCompany {
		return nil, apperrors.NewValidation("Role must be STUDENT or COMPANY")
	}

	user, err := s.core.Repos.Users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, lookupError(err, ErrUserNotFound)
	}
	if user.OnboardingComplete {
		return nil, ErrOnboardingComplete
	}

	user.Role = role
	user.OnboardingComplete = true
	if err := s.core.Repos.Users.Update(ctx, user); err != nil {
		return nil, internal(err)
	}

	s.core.syncMetadata(ctx, s.log, user.ExternalID, identity.PublicMetadata{Role: role, OnboardingComplete: true})
	return user, nil
}
