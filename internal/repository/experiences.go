package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

type ExperienceRepository interface {
	Create(ctx context.Context, experience *models.Experience) error
	GetByID(ctx context.Context, id string) (*models.Experience, error)
	Update(ctx context.Context, experience *models.Experience) error
	// DeleteLinked removes experiences referencing any of the applications or projects.
	DeleteLinked(ctx context.Context, applicationIDs, projectIDs []string) (int64, error)
	WithTx(tx *gorm.DB) ExperienceRepository
}

type experienceRepository struct {
	db *gorm.DB
}

func NewExperienceRepository(db *gorm.DB) ExperienceRepository {
	return &experienceRepository{db: db}
}

func (r *experienceRepository) WithTx(tx *gorm.DB) ExperienceRepository {
	return &experienceRepository{db: tx}
}

func (r *experienceRepository) Create(ctx context.Context, experience *models.Experience) error {
	return translateError(r.db.WithContext(ctx).Create(experience).Error)
}

func (r *experienceRepository) GetByID(ctx context.Context, id string) (*models.Experience, error) {
	var experience models.Experience
	if err := r.db.WithContext(ctx).First(&experience, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &experience, nil
}

func (r *experienceRepository) Update(ctx context.Context, experience *models.Experience) error {
	return translateError(r.db.WithContext(ctx).Save(experience).Error)
}

func (r *experienceRepository) DeleteLinked(ctx context.Context, applicationIDs, projectIDs []string) (int64, error) {
	if len(applicationIDs) == 0 && len(projectIDs) == 0 {
		return 0, nil
	}

	query := r.db.WithContext(ctx)
	switch {
	case len(applicationIDs) > 0 && len(projectIDs) > 0:
		query = query.Where("application_id IN ? OR project_id IN ?", applicationIDs, projectIDs)
	case len(applicationIDs) > 0:
		query = query.Where("application_id IN ?", applicationIDs)
	default:
		query = query.Where("project_id IN ?", projectIDs)
	}

	res := query.Delete(&models.Experience{})
	return res.RowsAffected, translateError(res.Error)
}
