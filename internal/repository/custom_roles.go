package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

type CustomRoleRepository interface {
	Create(ctx context.Context, role *models.CustomRole) error
	GetByID(ctx context.Context, id string) (*models.CustomRole, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.CustomRole, error)
	Update(ctx context.Context, role *models.CustomRole) error
	Delete(ctx context.Context, id string) error
	WithTx(tx *gorm.DB) CustomRoleRepository
}

type customRoleRepository struct {
	db *gorm.DB
}

func NewCustomRoleRepository(db *gorm.DB) CustomRoleRepository {
	return &customRoleRepository{db: db}
}

func (r *customRoleRepository) WithTx(tx *gorm.DB) CustomRoleRepository {
	return &customRoleRepository{db: tx}
}

func (r *customRoleRepository) Create(ctx context.Context, role *models.CustomRole) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(role).Error)
}

func (r *customRoleRepository) GetByID(ctx context.Context, id string) (*models.CustomRole, error) {
	var role models.CustomRole
	if err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &role, nil
}

func (r *customRoleRepository) ListByCompany(ctx context.Context, companyID string) ([]models.CustomRole, error) {
	var roles []models.CustomRole
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("name ASC").Find(&roles).Error
	return roles, translateError(err)
}

func (r *customRoleRepository) Update(ctx context.Context, role *models.CustomRole) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(role).Error)
}

func (r *customRoleRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.CustomRole{}, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
