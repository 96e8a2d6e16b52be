package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
	apperrors "github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/logger"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/textutil"
)

// ExperienceService handles experiences students submit for company review.
type ExperienceService struct {
	core Core
	log  *zap.Logger
}

// NewExperienceService constructs an ExperienceService.
func NewExperienceService(core Core) (*ExperienceService, error) {
	if err := core.validate("experience service"); err != nil {
		return nil, err
	}
	return &ExperienceService{core: core, log: logger.WithModule("experiences")}, nil
}

// SubmitExperienceInput describes a new experience.
type SubmitExperienceInput struct {
	CompanyID   string
	Description string
}

// ReviewExperienceInput approves with a grade or rejects.
type ReviewExperienceInput struct {
	Status models.ExperienceStatus
	Grade  *int
}

// Submit records an experience for a company the student has a project with.
func (s *ExperienceService) Submit(ctx context.Context, p *auth.Principal, in SubmitExperienceInput) (*models.Experience, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if !p.IsStudent() {
		return nil, ErrStudentOnly
	}

	description := textutil.PlainText(in.Description)
	if description == "" {
		return nil, apperrors.NewValidation("Description is required")
	}

	project, err := s.core.Repos.Projects.FindForStudentAndCompany(ctx, p.UserID, in.CompanyID)
	if err != nil {
		return nil, lookupError(err, ErrNoProjectWithCompany)
	}

	experience := &models.Experience{
		StudentID:     p.UserID,
		CompanyID:     project.CompanyID,
		ProjectID:     &project.ID,
		ApplicationID: &project.ApplicationID,
		Description:   description,
		Status:        models.ExperiencePending,
	}
	if err := s.core.Repos.Experiences.Create(ctx, experience); err != nil {
		return nil, internal(err)
	}
	return experience, nil
}

// Review settles a pending experience. Requires MANAGE_EXPERIENCES. Approval needs a grade
// between 2 and 6; rejection ignores any grade.
func (s *ExperienceService) Review(ctx context.Context, p *auth.Principal, experienceID string, in ReviewExperienceInput) (*models.Experience, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}

	experience, err := s.core.Repos.Experiences.GetByID(ctx, experienceID)
	if err != nil {
		return nil, lookupError(err, ErrExperienceNotFound)
	}
	if err := s.core.Permissions.Require(ctx, p.UserID, experience.CompanyID, permissions.ManageExperiences); err != nil {
		return nil, err
	}
	if experience.Status != models.ExperiencePending {
		return nil, ErrExperienceReviewed
	}

	switch in.Status {
	case models.ExperienceApproved:
		if in.Grade == nil || *in.Grade < models.MinExperienceGrade || *in.Grade > models.MaxExperienceGrade {
			return nil, ErrInvalidGrade
		}
		grade := *in.Grade
		experience.Grade = &grade
	case models.ExperienceRejected:
		experience.Grade = nil
	default:
		return nil, apperrors.NewValidation("Status must be APPROVED or REJECTED")
	}

	now := s.core.now()
	experience.Status = in.Status
	experience.ReviewedBy = &p.UserID
	experience.ReviewedAt = &now
	if err := s.core.Repos.Experiences.Update(ctx, experience); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrExperienceNotFound
		}
		return nil, internal(err)
	}

	s.core.notify(ctx, s.log, experience.StudentID, ExperienceReviewed{
		ExperienceID: experience.ID,
		CompanyID:    experience.CompanyID,
		Status:       experience.Status,
		Grade:        experience.Grade,
	})
	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: experience.CompanyID,
		Action:    "experience.review",
		Resource:  "experience:" + experience.ID,
		Result:    AuditSuccess,
		Metadata:  map[string]any{"status": experience.Status, "grade": experience.Grade},
	})
	return experience, nil
}
