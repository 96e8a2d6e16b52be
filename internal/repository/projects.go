package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByApplication(ctx context.Context, applicationID string) (*models.Project, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Project, error)
	// FindForStudentAndCompany returns any project linking the student to the company.
	FindForStudentAndCompany(ctx context.Context, studentID, companyID string) (*models.Project, error)
	ListIDsByApplications(ctx context.Context, applicationIDs []string) ([]string, error)
	DeleteByApplications(ctx context.Context, applicationIDs []string) (int64, error)
	WithTx(tx *gorm.DB) ProjectRepository
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) WithTx(tx *gorm.DB) ProjectRepository {
	return &projectRepository{db: tx}
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	return translateError(r.db.WithContext(ctx).Create(project).Error)
}

func (r *projectRepository) GetByApplication(ctx context.Context, applicationID string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, "application_id = ?", applicationID).Error; err != nil {
		return nil, translateError(err)
	}
	return &project, nil
}

func (r *projectRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Order("created_at DESC").Find(&projects).Error
	return projects, translateError(err)
}

func (r *projectRepository) FindForStudentAndCompany(ctx context.Context, studentID, companyID string) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND company_id = ?", studentID, companyID).
		Order("created_at DESC").
		First(&project).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &project, nil
}

func (r *projectRepository) ListIDsByApplications(ctx context.Context, applicationIDs []string) ([]string, error) {
	if len(applicationIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("application_id IN ?", applicationIDs).
		Pluck("id", &ids).Error
	return ids, translateError(err)
}

func (r *projectRepository) DeleteByApplications(ctx context.Context, applicationIDs []string) (int64, error) {
	if len(applicationIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("application_id IN ?", applicationIDs).Delete(&models.Project{})
	return res.RowsAffected, translateError(res.Error)
}
