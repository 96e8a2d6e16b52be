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
	"github.com/SimoSabev/LynkSkill-sub003/pkg/metrics"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/textutil"
)

// ApplicationService runs the application lifecycle from apply to accepted offer.
type ApplicationService struct {
	core Core
	log  *zap.Logger
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(core Core) (*ApplicationService, error) {
	if err := core.validate("application service"); err != nil {
		return nil, err
	}
	return &ApplicationService{core: core, log: logger.WithModule("applications")}, nil
}

// CleanupResult counts the rows removed by CleanupExpired.
type CleanupResult struct {
	Applications int64 `json:"applications"`
	Projects     int64 `json:"projects"`
	Experiences  int64 `json:"experiences"`
}

// Apply submits the caller's application to an internship. When the internship defines a
// complete test assignment, an Assignment is created for the student as a best-effort step.
func (s *ApplicationService) Apply(ctx context.Context, p *auth.Principal, internshipID, coverLetter string) (*models.Application, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if !p.IsStudent() {
		return nil, ErrStudentOnly
	}

	internship, err := s.core.Repos.Internships.GetByID(ctx, internshipID)
	if err != nil {
		return nil, lookupError(err, ErrInternshipNotFound)
	}

	if _, err := s.core.Repos.Applications.GetByStudentAndInternship(ctx, p.UserID, internship.ID); err == nil {
		return nil, ErrDuplicateApplication
	} else if !repository.IsNotFound(err) {
		return nil, internal(err)
	}

	if internship.RequiresCoverLetter && textutil.IsBlank(coverLetter) {
		return nil, ErrCoverLetterRequired
	}
	letter := textutil.PlainText(coverLetter)

	application := &models.Application{
		StudentID:    p.UserID,
		InternshipID: internship.ID,
		Status:       models.ApplicationPending,
	}
	if letter != "" {
		application.CoverLetter = &letter
	}
	if err := s.core.Repos.Applications.Create(ctx, application); err != nil {
		if repository.IsDuplicate(err) {
			return nil, ErrDuplicateApplication
		}
		return nil, internal(err)
	}
	metrics.Applications.WithLabelValues("submitted").Inc()

	if internship.HasTestAssignment() {
		s.createAssignment(ctx, internship, application)
	}
	if internship.Company != nil {
		s.core.notify(ctx, s.log, internship.Company.OwnerID, ApplicationSubmitted{
			ApplicationID:   application.ID,
			InternshipID:    internship.ID,
			InternshipTitle: internship.Title,
			StudentID:       p.UserID,
		})
	}
	s.core.publish(ctx, s.log, AggregateApplication, application.ID, EventApplicationSubmitted, map[string]any{
		"internship_id": internship.ID,
		"student_id":    p.UserID,
	})

	return application, nil
}

func (s *ApplicationService) createAssignment(ctx context.Context, internship *models.Internship, application *models.Application) {
	assignment := &models.Assignment{
		InternshipID:  internship.ID,
		StudentID:     application.StudentID,
		ApplicationID: &application.ID,
		Title:         *internship.TestAssignmentTitle,
		Description:   *internship.TestAssignmentDescription,
		DueDate:       internship.TestAssignmentDueDate.UTC(),
	}
	if err := s.core.Repos.Assignments.Create(ctx, assignment); err != nil {
		metrics.SideEffectFailures.WithLabelValues("assignment").Inc()
		s.log.Warn("create test assignment",
			zap.String("application_id", application.ID),
			zap.String("internship_id", internship.ID),
			zap.Error(err))
		return
	}

	s.core.notify(ctx, s.log, application.StudentID, AssignmentCreated{
		AssignmentID:    assignment.ID,
		InternshipID:    internship.ID,
		AssignmentTitle: assignment.Title,
		DueDate:         assignment.DueDate,
	})
}

// Review approves or rejects a pending application. Requires MANAGE_APPLICATIONS.
func (s *ApplicationService) Review(ctx context.Context, p *auth.Principal, applicationID string, status models.ApplicationStatus) (*models.Application, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if status != models.ApplicationApproved && status != models.ApplicationRejected {
		return nil, apperrors.NewValidation("Status must be APPROVED or REJECTED")
	}

	application, err := s.core.Repos.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, lookupError(err, ErrApplicationNotFound)
	}
	if application.Internship == nil {
		return nil, ErrInternshipNotFound
	}
	if err := s.core.Permissions.Require(ctx, p.UserID, application.Internship.CompanyID, permissions.ManageApplications); err != nil {
		return nil, err
	}

	updated, err := s.core.Repos.Applications.UpdateStatus(ctx, application.ID, models.ApplicationPending, status)
	if err != nil {
		return nil, internal(err)
	}
	if !updated {
		return nil, ErrApplicationNotPending
	}
	application.Status = status
	metrics.Applications.WithLabelValues(string(status)).Inc()

	s.core.notify(ctx, s.log, application.StudentID, ApplicationReviewed{
		ApplicationID:   application.ID,
		InternshipID:    application.InternshipID,
		InternshipTitle: application.Internship.Title,
		Status:          status,
	})
	s.core.publish(ctx, s.log, AggregateApplication, application.ID, EventApplicationReviewed, map[string]any{
		"status":      status,
		"reviewed_by": p.UserID,
	})
	recordAudit(s.core.Audit, ctx, s.log, AuditEntry{
		UserID:    p.UserID,
		CompanyID: application.Internship.CompanyID,
		Action:    "application.review",
		Resource:  "application:" + application.ID,
		Result:    AuditSuccess,
		Metadata:  map[string]any{"status": status},
	})
	return application, nil
}

// AcceptOffer turns the caller's approved application into a project. Calling it again returns
// the existing project. notificationID, when set, names the offer notification to mark read.
func (s *ApplicationService) AcceptOffer(ctx context.Context, p *auth.Principal, applicationID, notificationID string) (*models.Project, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if !p.IsStudent() {
		return nil, ErrStudentOnly
	}

	application, err := s.core.Repos.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, lookupError(err, ErrApplicationNotFound)
	}
	if application.StudentID != p.UserID {
		return nil, ErrNotApplicationOwner
	}
	if application.Status != models.ApplicationApproved {
		return nil, ErrApplicationNotApproved
	}

	if existing, err := s.core.Repos.Projects.GetByApplication(ctx, application.ID); err == nil {
		return existing, nil
	} else if !repository.IsNotFound(err) {
		return nil, internal(err)
	}

	internship := application.Internship
	if internship == nil {
		return nil, ErrInternshipNotFound
	}
	project := &models.Project{
		ApplicationID: application.ID,
		InternshipID:  internship.ID,
		StudentID:     p.UserID,
		CompanyID:     internship.CompanyID,
		Title:         internship.Title,
		Status:        models.ProjectOngoing,
	}
	if err := s.core.Repos.Projects.Create(ctx, project); err != nil {
		if !repository.IsDuplicate(err) {
			return nil, internal(err)
		}
		existing, getErr := s.core.Repos.Projects.GetByApplication(ctx, application.ID)
		if getErr != nil {
			return nil, internal(getErr)
		}
		return existing, nil
	}
	metrics.Applications.WithLabelValues("offer_accepted").Inc()

	if notificationID != "" && s.core.Notifications != nil {
		if err := s.core.Notifications.MarkRead(ctx, p, notificationID); err != nil {
			s.log.Debug("mark offer notification read", zap.String("notification_id", notificationID), zap.Error(err))
		}
	}
	if internship.Company != nil {
		s.core.notify(ctx, s.log, internship.Company.OwnerID, OfferAccepted{
			ApplicationID:   application.ID,
			ProjectID:       project.ID,
			InternshipTitle: internship.Title,
			StudentID:       p.UserID,
		})
	}
	s.core.publish(ctx, s.log, AggregateApplication, application.ID, EventOfferAccepted, map[string]any{
		"project_id": project.ID,
		"company_id": project.CompanyID,
	})

	return project, nil
}

// ListMine returns the caller's applications.
func (s *ApplicationService) ListMine(ctx context.Context, p *auth.Principal) ([]models.Application, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	rows, err := s.core.Repos.Applications.ListByStudent(ensureContext(ctx), p.UserID)
	if err != nil {
		return nil, internal(err)
	}
	return rows, nil
}

// ListMyAssignments returns the caller's test assignments.
func (s *ApplicationService) ListMyAssignments(ctx context.Context, p *auth.Principal) ([]models.Assignment, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	rows, err := s.core.Repos.Assignments.ListByStudent(ensureContext(ctx), p.UserID)
	if err != nil {
		return nil, internal(err)
	}
	return rows, nil
}

// ListMyProjects returns the caller's projects.
func (s *ApplicationService) ListMyProjects(ctx context.Context, p *auth.Principal) ([]models.Project, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	rows, err := s.core.Repos.Projects.ListByStudent(ensureContext(ctx), p.UserID)
	if err != nil {
		return nil, internal(err)
	}
	return rows, nil
}

// CleanupExpired deletes applications whose internship's test-assignment due date has passed.
// In strict mode the experiences and projects that hang off those applications go first. Every
// delete runs in one transaction.
func (s *ApplicationService) CleanupExpired(ctx context.Context, strict bool) (CleanupResult, error) {
	ctx = ensureContext(ctx)
	now := s.core.now()

	var result CleanupResult
	err := s.core.inTx(ctx, func(repos *repository.Repositories) error {
		ids, err := repos.Applications.ListExpiredIDs(ctx, now)
		if err != nil || len(ids) == 0 {
			return err
		}

		if strict {
			projectIDs, err := repos.Projects.ListIDsByApplications(ctx, ids)
			if err != nil {
				return err
			}
			if result.Experiences, err = repos.Experiences.DeleteLinked(ctx, ids, projectIDs); err != nil {
				return err
			}
			if result.Projects, err = repos.Projects.DeleteByApplications(ctx, ids); err != nil {
				return err
			}
		}

		result.Applications, err = repos.Applications.DeleteByIDs(ctx, ids)
		return err
	})
	if err != nil {
		s.log.Error("expired application cleanup failed", zap.Bool("strict", strict), zap.Error(err))
		return CleanupResult{}, internal(err)
	}

	metrics.CleanupDeleted.WithLabelValues("applications").Add(float64(result.Applications))
	metrics.CleanupDeleted.WithLabelValues("projects").Add(float64(result.Projects))
	metrics.CleanupDeleted.WithLabelValues("experiences").Add(float64(result.Experiences))
	if result.Applications > 0 {
		s.log.Info("expired applications removed",
			zap.Bool("strict", strict),
			zap.Int64("applications", result.Applications),
			zap.Int64("projects", result.Projects),
			zap.Int64("experiences", result.Experiences))
	}
	return result, nil
}
