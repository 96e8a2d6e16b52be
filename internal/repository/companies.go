package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id string) (*models.Company, error)
	// GetByIDForUpdate takes a row lock on dialects that support one. Call it inside a transaction.
	GetByIDForUpdate(ctx context.Context, id string) (*models.Company, error)
	GetByOwner(ctx context.Context, ownerID string) (*models.Company, error)
	GetByCode(ctx context.Context, code string) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	WithTx(tx *gorm.DB) CompanyRepository
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) WithTx(tx *gorm.DB) CompanyRepository {
	return &companyRepository{db: tx}
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	return translateError(r.db.WithContext(ctx).Create(company).Error)
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (*models.Company, error) {
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

func (r *companyRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.Company, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (r *companyRepository) GetByOwner(ctx context.Context, ownerID string) (*models.Company, error) {
	return r.first(r.db.WithContext(ctx), "owner_id = ?", ownerID)
}

func (r *companyRepository) GetByCode(ctx context.Context, code string) (*models.Company, error) {
	return r.first(r.db.WithContext(ctx), "invitation_code = ?", code)
}

func (r *companyRepository) Update(ctx context.Context, company *models.Company) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(company).Error)
}

func (r *companyRepository) first(db *gorm.DB, query string, args ...any) (*models.Company, error) {
	var company models.Company
	if err := db.Where(query, args...).First(&company).Error; err != nil {
		return nil, translateError(err)
	}
	return &company, nil
}
