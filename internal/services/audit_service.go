package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auditctx"
	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
)

// Audit results.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
)

// AuditEntry captures a single audit event to persist.
type AuditEntry struct {
	UserID    string
	CompanyID string
	Action    string
	Resource  string
	Result    string
	Metadata  map[string]any
}

// AuditService persists and retrieves audit log entries.
type AuditService struct {
	repo    repository.AuditRepository
	checker *permissions.Checker
	now     func() time.Time
}

// NewAuditService constructs an AuditService. checker is only needed for ListForCompany.
func NewAuditService(repo repository.AuditRepository, checker *permissions.Checker) (*AuditService, error) {
	if repo == nil {
		return nil, errors.New("audit service: repository is required")
	}
	return &AuditService{repo: repo, checker: checker, now: time.Now}, nil
}

// Log stores an audit entry. The client address comes from the request actor on ctx.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(entry.Action) == "" {
		return errors.New("audit service: action is required")
	}
	if strings.TrimSpace(entry.Result) == "" {
		return errors.New("audit service: result is required")
	}

	row := &models.AuditLog{
		Action:    strings.TrimSpace(entry.Action),
		Resource:  strings.TrimSpace(entry.Resource),
		Result:    strings.TrimSpace(entry.Result),
		IPAddress: auditctx.IPAddress(ctx),
		CreatedAt: s.now().UTC(),
	}
	if entry.UserID != "" {
		id := entry.UserID
		row.UserID = &id
	}
	if entry.CompanyID != "" {
		id := entry.CompanyID
		row.CompanyID = &id
	}
	if entry.Metadata != nil {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("audit service: marshal metadata: %w", err)
		}
		row.Metadata = datatypes.JSON(encoded)
	}

	return s.repo.Create(ctx, row)
}

// ListForCompany returns recent audit rows of a company. Requires MANAGE_COMPANY.
func (s *AuditService) ListForCompany(ctx context.Context, p *auth.Principal, companyID string, limit int) ([]models.AuditLog, error) {
	ctx = ensureContext(ctx)
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if s.checker == nil {
		return nil, errors.New("audit service: permission checker is required")
	}
	if err := s.checker.Require(ctx, p.UserID, companyID, permissions.ManageCompany); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.repo.ListByCompany(ctx, companyID, limit)
	if err != nil {
		return nil, internal(err)
	}
	return rows, nil
}

// CleanupOlderThan removes audit logs older than the supplied retention window.
func (s *AuditService) CleanupOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, errors.New("audit service: retention must be positive")
	}
	return s.repo.DeleteBefore(ensureContext(ctx), s.now().UTC().Add(-retention))
}
