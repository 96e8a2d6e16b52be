package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
	apperrors "github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/logger"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/textutil"
)

// InternshipService manages internship listings.
type InternshipService struct {
	core Core
	log  *zap.Logger
}

// NewInternshipService constructs an InternshipService.
func NewInternshipService(core Core) (*InternshipService, error) {
	if err := core.validate("internship service"); err != nil {
		return nil, err
	}
	return &InternshipService{core: core, log: logger.WithModule("internships")}, nil
}

// InternshipInput holds the editable fields of an internship.
type InternshipInput struct {
	Title                     string
	Description               string
	Location                  string
	RequiresCoverLetter       bool
	TestAssignmentTitle       *string
	TestAssignmentDescription *string
	TestAssignmentDueDate     *time.Time
}

// Create publishes an internship. Requires CREATE_INTERNSHIPS.
func (s *InternshipService) Create(ctx context.Context, p *auth.Principal, companyID string, in InternshipInput) (*models.Internship, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if err := s.core.Permissions.Require(ctx, p.UserID, companyID, permissions.CreateInternships); err != nil {
		return nil, err
	}

	internship := &models.Internship{CompanyID: companyID, CreatedBy: p.UserID}
	if err := applyInternshipInput(internship, in); err != nil {
		return nil, err
	}
	if err := s.core.Repos.Internships.Create(ctx, internship); err != nil {
		return nil, internal(err)
	}

	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: companyID,
		Action:    "internship.create",
		Resource:  "internship:" + internship.ID,
		Result:    AuditSuccess,
	})
	return internship, nil
}

// Update replaces the editable fields. Requires EDIT_INTERNSHIPS in the owning company.
func (s *InternshipService) Update(ctx context.Context, p *auth.Principal, internshipID string, in InternshipInput) (*models.Internship, error) {
	ctx = ensureContext(ctx)
	internship, err := s.loadFor(ctx, p, internshipID, permissions.EditInternships)
	if err != nil {
		return nil, err
	}
	if err := applyInternshipInput(internship, in); err != nil {
		return nil, err
	}
	if err := s.core.Repos.Internships.Update(ctx, internship); err != nil {
		return nil, internal(err)
	}
	return internship, nil
}

// Delete removes an internship. Requires DELETE_INTERNSHIPS.
func (s *InternshipService) Delete(ctx context.Context, p *auth.Principal, internshipID string) error {
	ctx = ensureContext(ctx)
	internship, err := s.loadFor(ctx, p, internshipID, permissions.DeleteInternships)
	if err != nil {
		return err
	}
	if err := s.core.Repos.Internships.Delete(ctx, internship.ID); err != nil {
		return lookupError(err, ErrInternshipNotFound)
	}

	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: internship.CompanyID,
		Action:    "internship.delete",
		Resource:  "internship:" + internship.ID,
		Result:    AuditSuccess,
	})
	return nil
}

// Get returns a public internship listing.
func (s *InternshipService) Get(ctx context.Context, internshipID string) (*models.Internship, error) {
	internship, err := s.core.Repos.Internships.GetByID(ensureContext(ctx), internshipID)
	if err != nil {
		return nil, lookupError(err, ErrInternshipNotFound)
	}
	return internship, nil
}

// ListByCompany returns a company's public listings.
func (s *InternshipService) ListByCompany(ctx context.Context, companyID string) ([]models.Internship, error) {
	rows, err := s.core.Repos.Internships.ListByCompany(ensureContext(ctx), companyID)
	if err != nil {
		return nil, internal(err)
	}
	return rows, nil
}

// ListApplications returns the applications of an internship. Requires VIEW_APPLICATIONS.
func (s *InternshipService) ListApplications(ctx context.Context, p *auth.Principal, internshipID string) ([]models.Application, error) {
	ctx = ensureContext(ctx)
	internship, err := s.loadFor(ctx, p, internshipID, permissions.ViewApplications)
	if err != nil {
		return nil, err
	}
	rows, err := s.core.Repos.Applications.ListByInternship(ctx, internship.ID)
	if err != nil {
		return nil, internal(err)
	}
	return rows, nil
}

func (s *InternshipService) loadFor(ctx context.Context, p *auth.Principal, internshipID string, perm permissions.Permission) (*models.Internship, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	internship, err := s.core.Repos.Internships.GetByID(ctx, internshipID)
	if err != nil {
		return nil, lookupError(err, ErrInternshipNotFound)
	}
	if err := s.core.Permissions.Require(ctx, p.UserID, internship.CompanyID, perm); err != nil {
		return nil, err
	}
	return internship, nil
}

func applyInternshipInput(internship *models.Internship, in InternshipInput) error {
	title := textutil.PlainText(in.Title)
	if title == "" {
		return apperrors.NewValidation("Title is required")
	}

	internship.Title = title
	internship.Description = textutil.PlainText(in.Description)
	internship.Location = textutil.PlainText(in.Location)
	internship.RequiresCoverLetter = in.RequiresCoverLetter
	internship.TestAssignmentTitle = sanitizedPtr(in.TestAssignmentTitle)
	internship.TestAssignmentDescription = sanitizedPtr(in.TestAssignmentDescription)
	internship.TestAssignmentDueDate = nil
	if in.TestAssignmentDueDate != nil {
		due := in.TestAssignmentDueDate.UTC()
		internship.TestAssignmentDueDate = &due
	}
	return nil
}

func sanitizedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := textutil.PlainText(*value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
