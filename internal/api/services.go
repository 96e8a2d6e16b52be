package api

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/identity"
	"github.com/SimoSabev/LynkSkill-sub003/internal/notifications"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
	"github.com/SimoSabev/LynkSkill-sub003/internal/services"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/mail"
)

// ServiceDeps carries the collaborators needed to assemble the workflow services.
type ServiceDeps struct {
	DB          *gorm.DB
	Repos       *repository.Repositories
	Checker     *permissions.Checker
	Invalidator permissions.Invalidator
	Hub         *notifications.Hub
	Syncer      identity.MetadataSyncer
	Mailer      mail.Mailer

	TopicPrefix       string
	InvitationBaseURL string
	InvitationExpiry  time.Duration
	Now               func() time.Time
}

// Services groups every workflow service exposed over HTTP.
type Services struct {
	Repos         *repository.Repositories
	Users         *services.UserService
	Members       *services.MemberService
	Companies     *services.CompanyService
	Codes         *services.CodeJoinService
	Invitations   *services.InvitationService
	Internships   *services.InternshipService
	Applications  *services.ApplicationService
	Experiences   *services.ExperienceService
	Notifications *services.NotificationService
	Audit         *services.AuditService
}

// NewServices builds the shared service core and every workflow service on top of it.
func NewServices(deps ServiceDeps) (*Services, error) {
	if deps.DB == nil {
		return nil, errors.New("database handle must be provided")
	}
	if deps.Checker == nil {
		return nil, errors.New("permission checker must be provided")
	}

	repos := deps.Repos
	if repos == nil {
		repos = repository.New(deps.DB)
	}
	out := &Services{Repos: repos}

	var hub services.Broadcaster
	if deps.Hub != nil {
		hub = deps.Hub
	}

	var err error
	if out.Notifications, err = services.NewNotificationService(repos.Notifications, hub); err != nil {
		return nil, err
	}
	if out.Audit, err = services.NewAuditService(repos.AuditLogs, deps.Checker); err != nil {
		return nil, err
	}
	events, err := services.NewEventWriter(repos.Outbox, deps.TopicPrefix)
	if err != nil {
		return nil, err
	}

	syncer := deps.Syncer
	if syncer == nil {
		syncer = identity.NopSyncer{}
	}

	core := services.Core{
		DB:            deps.DB,
		Repos:         repos,
		Permissions:   deps.Checker,
		Invalidator:   deps.Invalidator,
		Notifications: out.Notifications,
		Audit:         out.Audit,
		Events:        events,
		Syncer:        syncer,
		Now:           deps.Now,
	}

	if out.Users, err = services.NewUserService(core); err != nil {
		return nil, fmt.Errorf("user service: %w", err)
	}
	if out.Members, err = services.NewMemberService(core); err != nil {
		return nil, fmt.Errorf("member service: %w", err)
	}
	if out.Companies, err = services.NewCompanyService(core); err != nil {
		return nil, fmt.Errorf("company service: %w", err)
	}
	if out.Codes, err = services.NewCodeJoinService(core); err != nil {
		return nil, fmt.Errorf("code join service: %w", err)
	}
	out.Invitations, err = services.NewInvitationService(core, deps.Mailer,
		services.WithInvitationBaseURL(deps.InvitationBaseURL),
		services.WithInvitationExpiry(deps.InvitationExpiry),
	)
	if err != nil {
		return nil, fmt.Errorf("invitation service: %w", err)
	}
	if out.Internships, err = services.NewInternshipService(core); err != nil {
		return nil, fmt.Errorf("internship service: %w", err)
	}
	if out.Applications, err = services.NewApplicationService(core); err != nil {
		return nil, fmt.Errorf("application service: %w", err)
	}
	if out.Experiences, err = services.NewExperienceService(core); err != nil {
		return nil, fmt.Errorf("experience service: %w", err)
	}

	return out, nil
}
