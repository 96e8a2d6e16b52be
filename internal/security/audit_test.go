package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/app"
	testutil "github.com/SimoSabev/LynkSkill-sub003/internal/database/testutil"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

func seedCompany(t *testing.T, db *gorm.DB, email string, withOwnerMembership bool) {
	t.Helper()

	owner := &models.User{ExternalID: "ext-" + email, Email: email, Role: models.UserRoleCompany, OnboardingComplete: true}
	require.NoError(t, db.Create(owner).Error)

	company := &models.Company{Name: "Acme " + email, OwnerID: owner.ID}
	require.NoError(t, db.Create(company).Error)

	if withOwnerMembership {
		require.NoError(t, db.Create(&models.CompanyMember{
			CompanyID:   company.ID,
			UserID:      owner.ID,
			DefaultRole: models.MemberRoleOwner.Ptr(),
			Status:      models.MemberStatusActive,
			JoinedAt:    time.Now(),
		}).Error)
	}
}

func findCheck(t *testing.T, result Result, id string) Check {
	t.Helper()
	for _, check := range result.Checks {
		if check.ID == id {
			return check
		}
	}
	t.Fatalf("check %s not found", id)
	return Check{}
}

func TestAuditServiceRun(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	seedCompany(t, db, "owner@example.com", true)

	cfg := &app.Config{
		Server: app.ServerConfig{
			AdminToken:  "0123456789abcdef0123456789abcdef",
			CORSOrigins: []string{"https://app.lynkskill.test"},
		},
		Auth: app.AuthConfig{
			JWT: app.JWTSettings{Secret: "0123456789abcdef0123456789abcdef0123456789abcdef"},
		},
		Invitations: app.InvitationConfig{BaseURL: "https://app.lynkskill.test", Expiry: 7 * 24 * time.Hour},
	}

	svc := NewAuditService(db, cfg)
	fixed := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return fixed })

	result := svc.Run(context.Background())
	require.Equal(t, fixed, result.CheckedAt)
	require.Len(t, result.Checks, 5)
	require.Equal(t, 5, result.Summary[string(StatusPass)])
	require.False(t, result.Failed())
}

func TestAuditServiceDetectsOrphanedCompany(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	seedCompany(t, db, "owner@example.com", true)
	seedCompany(t, db, "orphan@example.com", false)

	result := NewAuditService(db, &app.Config{}).Run(context.Background())

	check := findCheck(t, result, "company_owner_membership")
	require.Equal(t, StatusFail, check.Status)
	require.Equal(t, map[string]any{"count": int64(1)}, check.Details)
	require.True(t, result.Failed())
}

func TestAuditServiceConfigChecks(t *testing.T) {
	cases := []struct {
		name   string
		cfg    *app.Config
		id     string
		status CheckStatus
	}{
		{"missing config", nil, "cors_origins", StatusWarn},
		{"short jwt secret", &app.Config{Auth: app.AuthConfig{JWT: app.JWTSettings{Secret: "short"}}}, "jwt_secret_strength", StatusFail},
		{"acceptable jwt secret", &app.Config{Auth: app.AuthConfig{JWT: app.JWTSettings{Secret: "0123456789abcdef0123456789abcdef"}}}, "jwt_secret_strength", StatusWarn},
		{"oidc mode", &app.Config{Auth: app.AuthConfig{Mode: "oidc"}}, "jwt_secret_strength", StatusPass},
		{"admin disabled", &app.Config{}, "admin_token_strength", StatusPass},
		{"weak admin token", &app.Config{Server: app.ServerConfig{AdminToken: "admin"}}, "admin_token_strength", StatusWarn},
		{"wildcard cors", &app.Config{Server: app.ServerConfig{CORSOrigins: []string{"*"}}}, "cors_origins", StatusWarn},
		{"relative invitation url", &app.Config{Invitations: app.InvitationConfig{BaseURL: "/app"}}, "invitation_links", StatusFail},
		{"plain http invitation url", &app.Config{Invitations: app.InvitationConfig{BaseURL: "http://lynkskill.test"}}, "invitation_links", StatusWarn},
		{"localhost invitation url", &app.Config{Invitations: app.InvitationConfig{BaseURL: "http://localhost:3000"}}, "invitation_links", StatusPass},
		{"long invitation expiry", &app.Config{Invitations: app.InvitationConfig{BaseURL: "https://lynkskill.test", Expiry: 90 * 24 * time.Hour}}, "invitation_links", StatusWarn},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := NewAuditService(nil, tc.cfg).Run(context.Background())
			require.Equal(t, tc.status, findCheck(t, result, tc.id).Status)
			require.Equal(t, StatusWarn, findCheck(t, result, "company_owner_membership").Status)
		})
	}
}
