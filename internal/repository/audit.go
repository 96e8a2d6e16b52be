package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	ListByCompany(ctx context.Context, companyID string, limit int) ([]models.AuditLog, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	WithTx(tx *gorm.DB) AuditRepository
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) WithTx(tx *gorm.DB) AuditRepository {
	return &auditRepository{db: tx}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return translateError(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *auditRepository) ListByCompany(ctx context.Context, companyID string, limit int) ([]models.AuditLog, error) {
	query := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var entries []models.AuditLog
	err := query.Find(&entries).Error
	return entries, translateError(err)
}

func (r *auditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	return res.RowsAffected, translateError(res.Error)
}
