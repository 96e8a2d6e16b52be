package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auditctx"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/textutil"
)

func newCodeJoinService(t *testing.T, env *testEnv) *CodeJoinService {
	t.Helper()
	svc, err := NewCodeJoinService(env.core)
	require.NoError(t, err)
	return svc
}

func newCompanyService(t *testing.T, env *testEnv) *CompanyService {
	t.Helper()
	svc, err := NewCompanyService(env.core)
	require.NoError(t, err)
	return svc
}

func boolPtr(v bool) *bool           { return &v }
func intPtr(v int) *int              { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func TestCodePreviewTruncatesDescription(t *testing.T) {
	env := newTestEnv(t)
	svc := newCodeJoinService(t, env)
	company, _ := env.company("acme")

	long := strings.Repeat("é", 250)
	require.NoError(t, env.db.Model(&models.Company{}).Where("id = ?", company.ID).Update("description", long).Error)

	joiner := env.user("joiner@example.com", models.UserRoleTeamMember)
	preview, err := svc.Preview(env.ctx, joiner, strings.ToLower(*company.InvitationCode))
	require.NoError(t, err)
	require.Equal(t, company.ID, preview.CompanyID)
	require.Equal(t, "acme", preview.CompanyName)
	require.EqualValues(t, 1, preview.MemberCount)
	require.Equal(t, strings.Repeat("é", PreviewDescriptionLimit)+textutil.Ellipsis, preview.Description)

	require.NoError(t, env.db.Model(&models.Company{}).Where("id = ?", company.ID).Update("description", "Short").Error)
	preview, err = svc.Preview(env.ctx, joiner, *company.InvitationCode)
	require.NoError(t, err)
	require.Equal(t, "Short", preview.Description)
	require.EqualValues(t, 0, env.count(&models.CompanyMember{}, "user_id = ?", joiner.UserID), "preview never joins")
}

func TestCodePreviewFailureOrder(t *testing.T) {
	env := newTestEnv(t)
	svc := newCodeJoinService(t, env)
	companies := newCompanyService(t, env)
	company, owner := env.company("acme")
	code := *company.InvitationCode

	student := env.user("student@example.com", models.UserRoleStudent)
	member := env.user("member@example.com", models.UserRoleTeamMember)
	env.member(company.ID, member, models.MemberRoleMember)
	joiner := env.user("joiner@example.com", models.UserRoleTeamMember)

	_, err := svc.Preview(env.ctx, nil, code)
	require.Error(t, err)

	_, err = svc.Preview(env.ctx, member, "not a code")
	require.ErrorIs(t, err, ErrAlreadyMember, "eligibility is checked before the format")

	_, err = svc.Preview(env.ctx, owner, code)
	require.ErrorIs(t, err, ErrAlreadyMember)

	_, err = svc.Preview(env.ctx, student, "not a code")
	require.ErrorIs(t, err, ErrStudentCannotJoin)

	_, err = svc.Preview(env.ctx, joiner, "AB1-CD23-EF45-GH67")
	require.ErrorIs(t, err, ErrCodeInvalidFormat)

	_, err = svc.Preview(env.ctx, joiner, "ZZZZ-ZZZZ-ZZZZ-ZZZ9")
	require.ErrorIs(t, err, ErrCompanyNotFound)

	// Full company: the cap of 2 is reached by the owner and the existing member.
	_, err = companies.UpdateCodeSettings(env.ctx, owner, company.ID, CodeSettingsInput{MaxTeamMembers: intPtr(2)})
	require.NoError(t, err)
	_, err = svc.Preview(env.ctx, joiner, code)
	require.ErrorIs(t, err, ErrCompanyFull)

	// Expired outranks full.
	_, err = companies.UpdateCodeSettings(env.ctx, owner, company.ID, CodeSettingsInput{ExpiresAt: timePtr(env.now.Add(time.Hour))})
	require.NoError(t, err)
	env.now = env.now.Add(2 * time.Hour)
	_, err = svc.Preview(env.ctx, joiner, code)
	require.ErrorIs(t, err, ErrCodeExpired)

	// Disabled outranks expired.
	_, err = companies.UpdateCodeSettings(env.ctx, owner, company.ID, CodeSettingsInput{Enabled: boolPtr(false)})
	require.NoError(t, err)
	_, err = svc.Preview(env.ctx, joiner, code)
	require.ErrorIs(t, err, ErrCodeDisabled)
}

func TestCodeJoinCreatesMembershipAndAuditRow(t *testing.T) {
	env := newTestEnv(t)
	svc := newCodeJoinService(t, env)
	company, owner := env.company("acme")
	joiner := env.user("joiner@example.com", "")

	ctx := auditctx.WithActor(env.ctx, auditctx.Actor{UserID: joiner.UserID, IPAddress: "203.0.113.7"})
	member, err := svc.Join(ctx, joiner, "  "+strings.ToLower(*company.InvitationCode)+" ")
	require.NoError(t, err)
	require.Equal(t, company.ID, member.CompanyID)
	require.Equal(t, models.MemberRoleMember, *member.DefaultRole)
	require.Equal(t, models.MemberStatusActive, member.Status)

	user, err := env.repos.Users.GetByID(env.ctx, joiner.UserID)
	require.NoError(t, err)
	require.Equal(t, models.UserRoleTeamMember, user.Role)
	require.True(t, user.OnboardingComplete)

	joins, err := env.repos.CodeJoins.ListByCompany(env.ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, joins, 1)
	require.Equal(t, joiner.UserID, joins[0].UserID)
	require.Equal(t, "203.0.113.7", joins[0].IPAddress)
	require.True(t, joins[0].JoinedAt.Equal(testNow))

	require.EqualValues(t, 1, env.count(&models.Notification{}, "user_id = ? AND type = ?", owner.UserID, NotificationMemberJoinedByCode))

	_, err = svc.Join(env.ctx, joiner, *company.InvitationCode)
	require.ErrorIs(t, err, ErrAlreadyMember)
	require.EqualValues(t, 1, env.count(&models.CompanyCodeJoin{}, "company_id = ?", company.ID))
}

func TestCodeJoinRespectsCap(t *testing.T) {
	env := newTestEnv(t)
	svc := newCodeJoinService(t, env)
	companies := newCompanyService(t, env)
	company, owner := env.company("acme")

	_, err := companies.UpdateCodeSettings(env.ctx, owner, company.ID, CodeSettingsInput{MaxTeamMembers: intPtr(2)})
	require.NoError(t, err)

	first := env.user("first@example.com", models.UserRoleTeamMember)
	second := env.user("second@example.com", models.UserRoleTeamMember)

	_, err = svc.Join(env.ctx, first, *company.InvitationCode)
	require.NoError(t, err)
	_, err = svc.Join(env.ctx, second, *company.InvitationCode)
	require.ErrorIs(t, err, ErrCompanyFull)

	count, err := env.repos.Members.CountActive(env.ctx, company.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func TestCodeJoinAfterRegenerate(t *testing.T) {
	env := newTestEnv(t)
	svc := newCodeJoinService(t, env)
	companies := newCompanyService(t, env)
	company, owner := env.company("acme")
	old := *company.InvitationCode

	updated, err := companies.RegenerateCode(env.ctx, owner, company.ID)
	require.NoError(t, err)
	require.NotEqual(t, old, *updated.InvitationCode)

	joiner := env.user("joiner@example.com", "")
	_, err = svc.Join(env.ctx, joiner, old)
	require.ErrorIs(t, err, ErrCompanyNotFound)

	_, err = svc.Join(env.ctx, joiner, *updated.InvitationCode)
	require.NoError(t, err)
}

func TestCheckCode(t *testing.T) {
	code := "AB12-CD34-EF56-GH78"
	past := testNow.Add(-time.Minute)
	future := testNow.Add(time.Minute)

	cases := []struct {
		name    string
		company models.Company
		want    error
	}{
		{name: "valid", company: models.Company{InvitationCode: &code, CodeEnabled: true, CodeExpiresAt: &future}},
		{name: "no expiry", company: models.Company{InvitationCode: &code, CodeEnabled: true}},
		{name: "rotated", company: models.Company{CodeEnabled: true}, want: ErrCompanyNotFound},
		{name: "disabled", company: models.Company{InvitationCode: &code}, want: ErrCodeDisabled},
		{name: "expired", company: models.Company{InvitationCode: &code, CodeEnabled: true, CodeExpiresAt: &past}, want: ErrCodeExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkCode(&tc.company, code, testNow)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCodeJoinRechecksMembershipInsideTransaction(t *testing.T) {
	env := newTestEnv(t)
	company, _ := env.company("acme")
	other, _ := env.company("globex")
	joiner := env.user("joiner@example.com", "")

	env.withMembers(&staleMembers{MemberRepository: env.repos.Members, afterRead: func() {
		env.member(other.ID, joiner, models.MemberRoleMember)
	}})
	svc := newCodeJoinService(t, env)

	_, err := svc.Join(env.ctx, joiner, *company.InvitationCode)
	require.ErrorIs(t, err, ErrAlreadyMember)
	require.EqualValues(t, 1, env.activeMemberships(joiner.UserID))
	require.Zero(t, env.count(&models.CompanyCodeJoin{}, "company_id = ?", company.ID))
}

func TestCodeJoinRejectedByActiveMembershipIndex(t *testing.T) {
	env := newTestEnv(t)
	company, _ := env.company("acme")
	other, _ := env.company("globex")
	joiner := env.user("joiner@example.com", "")
	env.member(other.ID, joiner, models.MemberRoleMember)

	env.withMembers(&staleMembers{MemberRepository: env.repos.Members, hideActive: true})
	_, err := newCodeJoinService(t, env).Join(env.ctx, joiner, *company.InvitationCode)
	require.ErrorIs(t, err, ErrAlreadyMember)
	require.EqualValues(t, 1, env.activeMemberships(joiner.UserID))
}
