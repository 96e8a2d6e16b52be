package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

// CodeJoinRepository is append-only.
type CodeJoinRepository interface {
	Create(ctx context.Context, join *models.CompanyCodeJoin) error
	ListByCompany(ctx context.Context, companyID string) ([]models.CompanyCodeJoin, error)
	WithTx(tx *gorm.DB) CodeJoinRepository
}

type codeJoinRepository struct {
	db *gorm.DB
}

func NewCodeJoinRepository(db *gorm.DB) CodeJoinRepository {
	return &codeJoinRepository{db: db}
}

func (r *codeJoinRepository) WithTx(tx *gorm.DB) CodeJoinRepository {
	return &codeJoinRepository{db: tx}
}

func (r *codeJoinRepository) Create(ctx context.Context, join *models.CompanyCodeJoin) error {
	return translateError(r.db.WithContext(ctx).Create(join).Error)
}

func (r *codeJoinRepository) ListByCompany(ctx context.Context, companyID string) ([]models.CompanyCodeJoin, error) {
	var joins []models.CompanyCodeJoin
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("joined_at ASC").Find(&joins).Error
	return joins, translateError(err)
}
