package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/database/testutil"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

var fixedNow = time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db         *gorm.DB
	repos      *Repositories
	owner      models.User
	student    models.User
	company    models.Company
	internship models.Internship
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	f := &fixture{db: db, repos: New(db)}
	ctx := context.Background()

	f.owner = models.User{ExternalID: "ext-owner", Email: "Owner@Example.com", Role: models.UserRoleCompany}
	f.student = models.User{ExternalID: "ext-student", Email: "student@example.com", Role: models.UserRoleStudent}
	require.NoError(t, f.repos.Users.Create(ctx, &f.owner))
	require.NoError(t, f.repos.Users.Create(ctx, &f.student))

	f.company = models.Company{Name: "Acme", OwnerID: f.owner.ID}
	require.NoError(t, f.repos.Companies.Create(ctx, &f.company))

	f.internship = models.Internship{CompanyID: f.company.ID, Title: "Backend intern"}
	require.NoError(t, f.repos.Internships.Create(ctx, &f.internship))
	return f
}

func TestUserEmailIsStoredLowerCase(t *testing.T) {
	f := newFixture(t)

	user, err := f.repos.Users.GetByEmail(context.Background(), "OWNER@example.COM")
	require.NoError(t, err)
	require.Equal(t, "owner@example.com", user.Email)

	dup := models.User{ExternalID: "ext-other", Email: "owner@example.com"}
	require.ErrorIs(t, f.repos.Users.Create(context.Background(), &dup), ErrDuplicate)
}

func TestApplicationDuplicateIsTranslated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := models.Application{StudentID: f.student.ID, InternshipID: f.internship.ID, Status: models.ApplicationPending}
	require.NoError(t, f.repos.Applications.Create(ctx, &first))

	second := models.Application{StudentID: f.student.ID, InternshipID: f.internship.ID, Status: models.ApplicationPending}
	require.ErrorIs(t, f.repos.Applications.Create(ctx, &second), ErrDuplicate)
}

func TestApplicationUpdateStatusOnlyFromExpected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app := models.Application{StudentID: f.student.ID, InternshipID: f.internship.ID, Status: models.ApplicationPending}
	require.NoError(t, f.repos.Applications.Create(ctx, &app))

	changed, err := f.repos.Applications.UpdateStatus(ctx, app.ID, models.ApplicationPending, models.ApplicationApproved)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = f.repos.Applications.UpdateStatus(ctx, app.ID, models.ApplicationPending, models.ApplicationRejected)
	require.NoError(t, err)
	require.False(t, changed)

	loaded, err := f.repos.Applications.GetByID(ctx, app.ID)
	require.NoError(t, err)
	require.Equal(t, models.ApplicationApproved, loaded.Status)
	require.NotNil(t, loaded.Internship)
	require.NotNil(t, loaded.Internship.Company)
	require.Equal(t, f.company.ID, loaded.Internship.Company.ID)
}

func TestListExpiredIDsUsesAssignmentDueDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)
	title, desc := "Task", "Build it"

	expired := models.Internship{CompanyID: f.company.ID, Title: "Expired", TestAssignmentTitle: &title,
		TestAssignmentDescription: &desc, TestAssignmentDueDate: &past}
	open := models.Internship{CompanyID: f.company.ID, Title: "Open", TestAssignmentTitle: &title,
		TestAssignmentDescription: &desc, TestAssignmentDueDate: &future}
	require.NoError(t, f.repos.Internships.Create(ctx, &expired))
	require.NoError(t, f.repos.Internships.Create(ctx, &open))

	stale := models.Application{StudentID: f.student.ID, InternshipID: expired.ID, Status: models.ApplicationPending}
	fresh := models.Application{StudentID: f.student.ID, InternshipID: open.ID, Status: models.ApplicationPending}
	undated := models.Application{StudentID: f.student.ID, InternshipID: f.internship.ID, Status: models.ApplicationPending}
	require.NoError(t, f.repos.Applications.Create(ctx, &stale))
	require.NoError(t, f.repos.Applications.Create(ctx, &fresh))
	require.NoError(t, f.repos.Applications.Create(ctx, &undated))

	ids, err := f.repos.Applications.ListExpiredIDs(ctx, fixedNow)
	require.NoError(t, err)
	require.Equal(t, []string{stale.ID}, ids)
}

func TestInvitationLifecycleQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv := models.CompanyInvitation{
		CompanyID:   f.company.ID,
		Email:       "Invitee@Example.com",
		DefaultRole: models.MemberRoleMember.Ptr(),
		TokenHash:   "hash-1",
		IssuedAt:    fixedNow,
		ExpiresAt:   fixedNow.Add(7 * 24 * time.Hour),
		InvitedBy:   f.owner.ID,
	}
	require.NoError(t, f.repos.Invitations.Create(ctx, &inv))

	pending, err := f.repos.Invitations.FindPending(ctx, f.company.ID, "invitee@example.com", fixedNow)
	require.NoError(t, err)
	require.Equal(t, inv.ID, pending.ID)

	_, err = f.repos.Invitations.FindPending(ctx, f.company.ID, "invitee@example.com", fixedNow.Add(8*24*time.Hour))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.repos.Invitations.RotateToken(ctx, inv.ID, "hash-2", fixedNow, fixedNow.Add(time.Hour)))
	_, err = f.repos.Invitations.GetByTokenHash(ctx, "hash-1")
	require.ErrorIs(t, err, ErrNotFound)

	byHash, err := f.repos.Invitations.GetByTokenHash(ctx, "hash-2")
	require.NoError(t, err)
	require.NotNil(t, byHash.Company)

	ok, err := f.repos.Invitations.MarkAccepted(ctx, inv.ID, f.student.ID, fixedNow)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.repos.Invitations.MarkAccepted(ctx, inv.ID, f.student.ID, fixedNow)
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, f.repos.Invitations.RotateToken(ctx, inv.ID, "hash-3", fixedNow, fixedNow), ErrNotFound)
}

func TestDeleteExpiredInvitationsKeepsAccepted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	accepted := fixedNow
	rows := []models.CompanyInvitation{
		{CompanyID: f.company.ID, Email: "a@example.com", TokenHash: "a", ExpiresAt: fixedNow.Add(-48 * time.Hour), InvitedBy: f.owner.ID},
		{CompanyID: f.company.ID, Email: "b@example.com", TokenHash: "b", ExpiresAt: fixedNow.Add(-48 * time.Hour), InvitedBy: f.owner.ID, AcceptedAt: &accepted},
		{CompanyID: f.company.ID, Email: "c@example.com", TokenHash: "c", ExpiresAt: fixedNow.Add(time.Hour), InvitedBy: f.owner.ID},
	}
	for i := range rows {
		require.NoError(t, f.repos.Invitations.Create(ctx, &rows[i]))
	}

	deleted, err := f.repos.Invitations.DeleteExpiredBefore(ctx, fixedNow.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	list, err := f.repos.Invitations.ListByCompany(ctx, f.company.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestMemberQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role := models.CustomRole{CompanyID: f.company.ID, Name: "Recruiter", Permissions: []string{"VIEW_APPLICATIONS"}}
	require.NoError(t, f.repos.CustomRoles.Create(ctx, &role))

	member := models.CompanyMember{
		CompanyID:    f.company.ID,
		UserID:       f.student.ID,
		CustomRoleID: &role.ID,
		Status:       models.MemberStatusActive,
		JoinedAt:     fixedNow,
	}
	require.NoError(t, f.repos.Members.Create(ctx, &member))

	active, err := f.repos.Members.FindActiveByUser(ctx, f.student.ID)
	require.NoError(t, err)
	require.NotNil(t, active.CustomRole)
	require.Equal(t, []string{"VIEW_APPLICATIONS"}, []string(active.CustomRole.Permissions))

	count, err := f.repos.Members.CountActive(ctx, f.company.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	holders, err := f.repos.Members.ListUserIDsByCustomRole(ctx, role.ID)
	require.NoError(t, err)
	require.Equal(t, []string{f.student.ID}, holders)

	member.Status = models.MemberStatusLeft
	require.NoError(t, f.repos.Members.Update(ctx, &member))

	_, err = f.repos.Members.FindActiveByUser(ctx, f.student.ID)
	require.ErrorIs(t, err, ErrNotFound)

	dup := models.CustomRole{CompanyID: f.company.ID, Name: "Recruiter"}
	require.ErrorIs(t, f.repos.CustomRoles.Create(ctx, &dup), ErrDuplicate)

	detached, err := f.repos.Members.DetachCustomRole(ctx, role.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, detached)

	former, err := f.repos.Members.GetByID(ctx, member.ID)
	require.NoError(t, err)
	require.Nil(t, former.CustomRoleID)
	require.NotNil(t, former.DefaultRole)
	require.Equal(t, models.MemberRoleMember, *former.DefaultRole)
	require.NoError(t, f.repos.CustomRoles.Delete(ctx, role.ID))
}

func TestDetachCustomRoleKeepsActiveHolders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role := models.CustomRole{CompanyID: f.company.ID, Name: "Scout", Permissions: []string{"VIEW_MEMBERS"}}
	require.NoError(t, f.repos.CustomRoles.Create(ctx, &role))

	member := models.CompanyMember{
		CompanyID:    f.company.ID,
		UserID:       f.student.ID,
		CustomRoleID: &role.ID,
		Status:       models.MemberStatusActive,
		JoinedAt:     fixedNow,
	}
	require.NoError(t, f.repos.Members.Create(ctx, &member))

	detached, err := f.repos.Members.DetachCustomRole(ctx, role.ID)
	require.NoError(t, err)
	require.Zero(t, detached)

	active, err := f.repos.Members.FindActiveByUser(ctx, f.student.ID)
	require.NoError(t, err)
	require.NotNil(t, active.CustomRoleID)
	require.Nil(t, active.DefaultRole)
}

func TestCountUnacceptedByCustomRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role := models.CustomRole{CompanyID: f.company.ID, Name: "Scout", Permissions: []string{"VIEW_MEMBERS"}}
	require.NoError(t, f.repos.CustomRoles.Create(ctx, &role))

	accepted := fixedNow
	rows := []models.CompanyInvitation{
		{CompanyID: f.company.ID, Email: "a@example.com", CustomRoleID: &role.ID, TokenHash: "a", ExpiresAt: fixedNow.Add(time.Hour), InvitedBy: f.owner.ID},
		{CompanyID: f.company.ID, Email: "b@example.com", CustomRoleID: &role.ID, TokenHash: "b", ExpiresAt: fixedNow.Add(-48 * time.Hour), InvitedBy: f.owner.ID},
		{CompanyID: f.company.ID, Email: "c@example.com", CustomRoleID: &role.ID, TokenHash: "c", ExpiresAt: fixedNow.Add(time.Hour), InvitedBy: f.owner.ID, AcceptedAt: &accepted},
		{CompanyID: f.company.ID, Email: "d@example.com", DefaultRole: models.MemberRoleMember.Ptr(), TokenHash: "d", ExpiresAt: fixedNow.Add(time.Hour), InvitedBy: f.owner.ID},
	}
	for i := range rows {
		require.NoError(t, f.repos.Invitations.Create(ctx, &rows[i]))
	}

	count, err := f.repos.Invitations.CountUnacceptedByCustomRole(ctx, role.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func TestWithTxRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.db.Transaction(func(tx *gorm.DB) error {
		repos := f.repos.WithTx(tx)
		join := models.CompanyCodeJoin{CompanyID: f.company.ID, UserID: f.student.ID, JoinedAt: fixedNow}
		require.NoError(t, repos.CodeJoins.Create(ctx, &join))
		return ErrDuplicate
	})
	require.ErrorIs(t, err, ErrDuplicate)

	joins, err := f.repos.CodeJoins.ListByCompany(ctx, f.company.ID)
	require.NoError(t, err)
	require.Empty(t, joins)
}

func TestOutboxRetryFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	event := models.OutboxEvent{AggregateType: "invitation", AggregateID: "inv-1", EventType: "invitation.accepted",
		Topic: "lynkskill.invitations", Payload: []byte(`{}`)}
	require.NoError(t, f.repos.Outbox.Create(ctx, &event))
	require.Equal(t, models.OutboxPending, event.Status)

	pending, err := f.repos.Outbox.ListPending(ctx, fixedNow, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, f.repos.Outbox.MarkFailed(ctx, event.ID, "broker down", fixedNow.Add(time.Minute)))
	pending, err = f.repos.Outbox.ListPending(ctx, fixedNow, 10)
	require.NoError(t, err)
	require.Empty(t, pending)

	pending, err = f.repos.Outbox.ListPending(ctx, fixedNow.Add(2*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, 1, pending[0].RetryCount)

	require.NoError(t, f.repos.Outbox.MarkSent(ctx, event.ID, fixedNow))
	deleted, err := f.repos.Outbox.DeleteSentBefore(ctx, fixedNow.Add(time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)
}
