package security

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/app"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

// CheckStatus captures the outcome of a security audit check.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
)

const (
	minSecretLength       = 32
	recommendedSecretSize = 48
	maxInvitationExpiry   = 30 * 24 * time.Hour
)

// Check contains the result of a single audit verification.
type Check struct {
	ID          string      `json:"id"`
	Status      CheckStatus `json:"status"`
	Message     string      `json:"message"`
	Remediation string      `json:"remediation,omitempty"`
	Details     any         `json:"details,omitempty"`
}

// Result aggregates all checks with a simple status summary.
type Result struct {
	CheckedAt time.Time      `json:"checked_at"`
	Checks    []Check        `json:"checks"`
	Summary   map[string]int `json:"summary"`
}

// Failed reports whether any check failed.
func (r Result) Failed() bool {
	return r.Summary[string(StatusFail)] > 0
}

// AuditService evaluates the deployment's security posture. All dependencies are optional;
// missing inputs degrade specific checks to warnings.
type AuditService struct {
	db  *gorm.DB
	cfg *app.Config
	now func() time.Time
}

// NewAuditService constructs the audit service.
func NewAuditService(db *gorm.DB, cfg *app.Config) *AuditService {
	return &AuditService{
		db:  db,
		cfg: cfg,
		now: time.Now,
	}
}

// WithClock overrides the clock used in results (primarily for testing).
func (s *AuditService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Run executes all audit checks and returns their outcome.
func (s *AuditService) Run(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	checks := []Check{
		s.checkCompanyOwnership(ctx),
		s.checkJWTSecret(),
		s.checkAdminToken(),
		s.checkCORS(),
		s.checkInvitationLinks(),
	}

	summary := map[string]int{
		string(StatusPass): 0,
		string(StatusWarn): 0,
		string(StatusFail): 0,
	}

	for _, check := range checks {
		summary[string(check.Status)]++
	}

	return Result{
		CheckedAt: s.now().UTC(),
		Checks:    checks,
		Summary:   summary,
	}
}

// checkCompanyOwnership finds companies whose owner lost the OWNER membership. Those
// companies can no longer be administered.
func (s *AuditService) checkCompanyOwnership(ctx context.Context) Check {
	if s.db == nil {
		return Check{
			ID:          "company_owner_membership",
			Status:      StatusWarn,
			Message:     "Database unavailable; unable to verify company ownership.",
			Remediation: "Ensure database connectivity before running the audit.",
		}
	}

	owners := s.db.Model(&models.CompanyMember{}).
		Select("1").
		Where("company_members.company_id = companies.id").
		Where("company_members.user_id = companies.owner_id").
		Where("company_members.default_role = ?", models.MemberRoleOwner)

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Company{}).
		Where("NOT EXISTS (?)", owners).
		Count(&count).Error; err != nil {
		return Check{
			ID:          "company_owner_membership",
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Could not verify company ownership: %v", err),
			Remediation: "Retry after resolving database errors.",
		}
	}

	if count > 0 {
		return Check{
			ID:          "company_owner_membership",
			Status:      StatusFail,
			Message:     fmt.Sprintf("%d companies have no OWNER membership for their owner.", count),
			Remediation: "Restore the owner's membership with the OWNER role.",
			Details:     map[string]any{"count": count},
		}
	}

	return Check{
		ID:      "company_owner_membership",
		Status:  StatusPass,
		Message: "Every company owner holds the OWNER role.",
	}
}

func (s *AuditService) checkJWTSecret() Check {
	if s.cfg == nil {
		return configMissing("jwt_secret_strength")
	}
	if !s.cfg.Auth.UsesJWT() {
		return Check{
			ID:      "jwt_secret_strength",
			Status:  StatusPass,
			Message: "Tokens are verified against the OIDC issuer.",
		}
	}

	length := len(strings.TrimSpace(s.cfg.Auth.JWT.Secret))

	switch {
	case length == 0:
		return Check{
			ID:          "jwt_secret_strength",
			Status:      StatusFail,
			Message:     "Missing JWT signing secret.",
			Remediation: "Provide a cryptographically secure signing secret (>= 32 bytes).",
		}
	case length < minSecretLength:
		return Check{
			ID:          "jwt_secret_strength",
			Status:      StatusFail,
			Message:     fmt.Sprintf("JWT signing secret is too short (%d bytes).", length),
			Remediation: "Use a randomly generated secret of at least 32 bytes.",
		}
	case length < recommendedSecretSize:
		return Check{
			ID:          "jwt_secret_strength",
			Status:      StatusWarn,
			Message:     fmt.Sprintf("JWT signing secret is %d bytes. Consider increasing to 48+ bytes.", length),
			Remediation: "Increase the length of LYNKSKILL_AUTH_JWT_SECRET to at least 48 bytes.",
			Details:     map[string]any{"length": length},
		}
	default:
		return Check{
			ID:      "jwt_secret_strength",
			Status:  StatusPass,
			Message: fmt.Sprintf("JWT signing secret length is %d bytes.", length),
			Details: map[string]any{"length": length},
		}
	}
}

func (s *AuditService) checkAdminToken() Check {
	if s.cfg == nil {
		return configMissing("admin_token_strength")
	}

	length := len(strings.TrimSpace(s.cfg.Server.AdminToken))
	switch {
	case length == 0:
		return Check{
			ID:      "admin_token_strength",
			Status:  StatusPass,
			Message: "Maintenance endpoints are disabled.",
		}
	case length < minSecretLength:
		return Check{
			ID:          "admin_token_strength",
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Admin token is only %d characters.", length),
			Remediation: "Use a random admin token of at least 32 characters.",
		}
	default:
		return Check{
			ID:      "admin_token_strength",
			Status:  StatusPass,
			Message: "Admin token configured.",
		}
	}
}

func (s *AuditService) checkCORS() Check {
	if s.cfg == nil {
		return configMissing("cors_origins")
	}

	for _, origin := range s.cfg.Server.CORSOrigins {
		if strings.TrimSpace(origin) == "*" {
			return Check{
				ID:          "cors_origins",
				Status:      StatusWarn,
				Message:     "CORS allows every origin.",
				Remediation: "List the web client origins in LYNKSKILL_SERVER_CORS_ORIGINS.",
			}
		}
	}

	return Check{
		ID:      "cors_origins",
		Status:  StatusPass,
		Message: "CORS is restricted to configured origins.",
		Details: map[string]any{"origins": s.cfg.Server.CORSOrigins},
	}
}

// checkInvitationLinks verifies that invitation tokens travel over https and expire
// within a bounded window.
func (s *AuditService) checkInvitationLinks() Check {
	if s.cfg == nil {
		return configMissing("invitation_links")
	}

	cfg := s.cfg.Invitations
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || base.Host == "" {
		return Check{
			ID:          "invitation_links",
			Status:      StatusFail,
			Message:     fmt.Sprintf("Invitation base URL %q is not an absolute URL.", cfg.BaseURL),
			Remediation: "Set LYNKSKILL_INVITATIONS_BASE_URL to the public web client URL.",
		}
	}

	if base.Scheme != "https" && !isLoopback(base.Hostname()) {
		return Check{
			ID:          "invitation_links",
			Status:      StatusWarn,
			Message:     "Invitation links are sent over plain http.",
			Remediation: "Serve the web client over https.",
			Details:     map[string]any{"base_url": cfg.BaseURL},
		}
	}

	if cfg.Expiry > maxInvitationExpiry {
		return Check{
			ID:          "invitation_links",
			Status:      StatusWarn,
			Message:     fmt.Sprintf("Invitations stay valid for %s.", cfg.Expiry),
			Remediation: "Reduce LYNKSKILL_INVITATIONS_EXPIRY to 30 days or lower.",
			Details:     map[string]any{"expiry": cfg.Expiry.String()},
		}
	}

	return Check{
		ID:      "invitation_links",
		Status:  StatusPass,
		Message: "Invitation links are configured.",
	}
}

func configMissing(id string) Check {
	return Check{
		ID:          id,
		Status:      StatusWarn,
		Message:     "Configuration not loaded; check skipped.",
		Remediation: "Load configuration before running the security audit.",
	}
}

func isLoopback(host string) bool {
	switch strings.ToLower(host) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
