package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	apperrors "github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
)

type applicationFixture struct {
	env         *testEnv
	apps        *ApplicationService
	internships *InternshipService
	company     *models.Company
	owner       *auth.Principal
	student     *auth.Principal
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	t.Helper()
	env := newTestEnv(t)

	apps, err := NewApplicationService(env.core)
	require.NoError(t, err)
	internships, err := NewInternshipService(env.core)
	require.NoError(t, err)

	company, owner := env.company("acme")
	return &applicationFixture{
		env:         env,
		apps:        apps,
		internships: internships,
		company:     company,
		owner:       owner,
		student:     env.user("student@example.com", models.UserRoleStudent),
	}
}

func (f *applicationFixture) internship(t *testing.T, in InternshipInput) *models.Internship {
	t.Helper()
	if in.Title == "" {
		in.Title = "Backend intern"
	}
	internship, err := f.internships.Create(f.env.ctx, f.owner, f.company.ID, in)
	require.NoError(t, err)
	return internship
}

func withAssignment(due *time.Time) InternshipInput {
	title := "Build a CLI"
	description := "Parse a CSV and print totals"
	return InternshipInput{
		Title:                     "Backend intern",
		TestAssignmentTitle:       &title,
		TestAssignmentDescription: &description,
		TestAssignmentDueDate:     due,
	}
}

func TestApplyCreatesAssignmentWhenComplete(t *testing.T) {
	f := newApplicationFixture(t)
	env := f.env
	due := testNow.Add(14 * 24 * time.Hour)
	internship := f.internship(t, withAssignment(&due))

	application, err := f.apps.Apply(env.ctx, f.student, internship.ID, "")
	require.NoError(t, err)
	require.Equal(t, models.ApplicationPending, application.Status)
	require.Nil(t, application.CoverLetter)

	assignments, err := f.apps.ListMyAssignments(env.ctx, f.student)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, internship.ID, assignments[0].InternshipID)
	require.Equal(t, "Build a CLI", assignments[0].Title)
	require.True(t, assignments[0].DueDate.Equal(due))

	require.EqualValues(t, 1, env.count(&models.Notification{}, "user_id = ? AND type = ?", f.owner.UserID, NotificationApplicationSubmitted))
	require.EqualValues(t, 1, env.count(&models.Notification{}, "user_id = ? AND type = ?", f.student.UserID, NotificationAssignmentCreated))
	require.EqualValues(t, 1, env.count(&models.OutboxEvent{}, "event_type = ?", EventApplicationSubmitted))
}

func TestApplySkipsIncompleteAssignment(t *testing.T) {
	f := newApplicationFixture(t)
	internship := f.internship(t, withAssignment(nil))

	_, err := f.apps.Apply(f.env.ctx, f.student, internship.ID, "Hello")
	require.NoError(t, err)
	require.EqualValues(t, 0, f.env.count(&models.Assignment{}, "student_id = ?", f.student.UserID))
}

func TestApplyRules(t *testing.T) {
	f := newApplicationFixture(t)
	env := f.env
	internship := f.internship(t, InternshipInput{RequiresCoverLetter: true})

	_, err := f.apps.Apply(env.ctx, f.owner, internship.ID, "Hi")
	require.ErrorIs(t, err, ErrStudentOnly)

	_, err = f.apps.Apply(env.ctx, f.student, "missing", "Hi")
	require.ErrorIs(t, err, ErrInternshipNotFound)

	_, err = f.apps.Apply(env.ctx, f.student, internship.ID, "<p> </p>")
	require.ErrorIs(t, err, ErrCoverLetterRequired)
	require.Equal(t, apperrors.KindValidation, apperrors.FromError(err).Kind)

	application, err := f.apps.Apply(env.ctx, f.student, internship.ID, "<b>I love Go</b>")
	require.NoError(t, err)
	require.Equal(t, "I love Go", *application.CoverLetter)

	_, err = f.apps.Apply(env.ctx, f.student, internship.ID, "Again")
	require.ErrorIs(t, err, ErrDuplicateApplication)
	require.Equal(t, apperrors.KindConflict, apperrors.FromError(err).Kind)

	mine, err := f.apps.ListMine(env.ctx, f.student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestReviewAndAcceptOffer(t *testing.T) {
	f := newApplicationFixture(t)
	env := f.env
	internship := f.internship(t, InternshipInput{})

	application, err := f.apps.Apply(env.ctx, f.student, internship.ID, "")
	require.NoError(t, err)

	_, err = f.apps.AcceptOffer(env.ctx, f.student, application.ID, "")
	require.ErrorIs(t, err, ErrApplicationNotApproved)

	viewer := env.user("viewer@example.com", models.UserRoleTeamMember)
	env.member(f.company.ID, viewer, models.MemberRoleMember)
	_, err = f.apps.Review(env.ctx, viewer, application.ID, models.ApplicationApproved)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = f.apps.Review(env.ctx, f.owner, application.ID, models.ApplicationPending)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	reviewed, err := f.apps.Review(env.ctx, f.owner, application.ID, models.ApplicationApproved)
	require.NoError(t, err)
	require.Equal(t, models.ApplicationApproved, reviewed.Status)

	_, err = f.apps.Review(env.ctx, f.owner, application.ID, models.ApplicationRejected)
	require.ErrorIs(t, err, ErrApplicationNotPending)

	notes := env.hub.For(f.student.UserID)
	require.NotEmpty(t, notes)
	offer, ok := notes[len(notes)-1].Notification.(*models.Notification)
	require.True(t, ok)
	require.Equal(t, NotificationApplicationReviewed, offer.Type)

	other := env.user("other@example.com", models.UserRoleStudent)
	_, err = f.apps.AcceptOffer(env.ctx, other, application.ID, "")
	require.ErrorIs(t, err, ErrNotApplicationOwner)

	project, err := f.apps.AcceptOffer(env.ctx, f.student, application.ID, offer.ID)
	require.NoError(t, err)
	require.Equal(t, f.company.ID, project.CompanyID)
	require.Equal(t, models.ProjectOngoing, project.Status)

	again, err := f.apps.AcceptOffer(env.ctx, f.student, application.ID, offer.ID)
	require.NoError(t, err)
	require.Equal(t, project.ID, again.ID)
	require.EqualValues(t, 1, env.count(&models.Project{}, "application_id = ?", application.ID))

	require.EqualValues(t, 0, env.count(&models.Notification{}, "id = ? AND read_at IS NULL", offer.ID))
	require.EqualValues(t, 1, env.count(&models.Notification{}, "user_id = ? AND type = ?", f.owner.UserID, NotificationOfferAccepted))

	projects, err := f.apps.ListMyProjects(env.ctx, f.student)
	require.NoError(t, err)
	require.Len(t, projects, 1)
}

func TestCleanupExpired(t *testing.T) {
	f := newApplicationFixture(t)
	env := f.env

	pastDue := testNow.Add(24 * time.Hour)
	expiring := f.internship(t, withAssignment(&pastDue))
	futureDue := testNow.Add(30 * 24 * time.Hour)
	current := f.internship(t, withAssignment(&futureDue))

	expired, err := f.apps.Apply(env.ctx, f.student, expiring.ID, "")
	require.NoError(t, err)
	kept, err := f.apps.Apply(env.ctx, f.student, current.ID, "")
	require.NoError(t, err)

	_, err = f.apps.Review(env.ctx, f.owner, expired.ID, models.ApplicationApproved)
	require.NoError(t, err)
	project, err := f.apps.AcceptOffer(env.ctx, f.student, expired.ID, "")
	require.NoError(t, err)

	experiences, err := NewExperienceService(env.core)
	require.NoError(t, err)
	_, err = experiences.Submit(env.ctx, f.student, SubmitExperienceInput{CompanyID: f.company.ID, Description: "Shipped the importer"})
	require.NoError(t, err)

	env.now = testNow.Add(2 * 24 * time.Hour)

	result, err := f.apps.CleanupExpired(env.ctx, true)
	require.NoError(t, err)
	require.Equal(t, CleanupResult{Applications: 1, Projects: 1, Experiences: 1}, result)

	require.EqualValues(t, 0, env.count(&models.Application{}, "id = ?", expired.ID))
	require.EqualValues(t, 1, env.count(&models.Application{}, "id = ?", kept.ID))
	require.EqualValues(t, 0, env.count(&models.Project{}, "id = ?", project.ID))
	require.EqualValues(t, 0, env.count(&models.Experience{}, ""))

	result, err = f.apps.CleanupExpired(env.ctx, true)
	require.NoError(t, err)
	require.Equal(t, CleanupResult{}, result)
}

func TestCleanupExpiredBasicLeavesDependents(t *testing.T) {
	f := newApplicationFixture(t)
	env := f.env

	due := testNow.Add(time.Hour)
	internship := f.internship(t, withAssignment(&due))
	application, err := f.apps.Apply(env.ctx, f.student, internship.ID, "")
	require.NoError(t, err)
	_, err = f.apps.Review(env.ctx, f.owner, application.ID, models.ApplicationApproved)
	require.NoError(t, err)
	_, err = f.apps.AcceptOffer(env.ctx, f.student, application.ID, "")
	require.NoError(t, err)

	env.now = testNow.Add(2 * time.Hour)
	result, err := f.apps.CleanupExpired(env.ctx, false)
	require.NoError(t, err)
	require.Equal(t, CleanupResult{Applications: 1}, result)
	require.EqualValues(t, 1, env.count(&models.Project{}, "application_id = ?", application.ID))
}
