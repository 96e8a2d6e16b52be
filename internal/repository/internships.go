package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

type InternshipRepository interface {
	Create(ctx context.Context, internship *models.Internship) error
	// GetByID preloads the owning company.
	GetByID(ctx context.Context, id string) (*models.Internship, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.Internship, error)
	Update(ctx context.Context, internship *models.Internship) error
	Delete(ctx context.Context, id string) error
	WithTx(tx *gorm.DB) InternshipRepository
}

type internshipRepository struct {
	db *gorm.DB
}

func NewInternshipRepository(db *gorm.DB) InternshipRepository {
	return &internshipRepository{db: db}
}

func (r *internshipRepository) WithTx(tx *gorm.DB) InternshipRepository {
	return &internshipRepository{db: tx}
}

func (r *internshipRepository) Create(ctx context.Context, internship *models.Internship) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(internship).Error)
}

func (r *internshipRepository) GetByID(ctx context.Context, id string) (*models.Internship, error) {
	var internship models.Internship
	if err := r.db.WithContext(ctx).Preload("Company").First(&internship, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &internship, nil
}

func (r *internshipRepository) ListByCompany(ctx context.Context, companyID string) ([]models.Internship, error) {
	var internships []models.Internship
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at DESC").Find(&internships).Error
	return internships, translateError(err)
}

func (r *internshipRepository) Update(ctx context.Context, internship *models.Internship) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(internship).Error)
}

func (r *internshipRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Internship{}, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
