package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

type ApplicationRepository interface {
	Create(ctx context.Context, application *models.Application) error
	// GetByID preloads the internship and its company.
	GetByID(ctx context.Context, id string) (*models.Application, error)
	GetByStudentAndInternship(ctx context.Context, studentID, internshipID string) (*models.Application, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Application, error)
	ListByInternship(ctx context.Context, internshipID string) ([]models.Application, error)
	// UpdateStatus moves an application from one status to another and reports whether a row changed.
	UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus) (bool, error)
	// ListExpiredIDs returns applications whose internship test-assignment due date is before now.
	ListExpiredIDs(ctx context.Context, now time.Time) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
	WithTx(tx *gorm.DB) ApplicationRepository
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) WithTx(tx *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: tx}
}

func (r *applicationRepository) Create(ctx context.Context, application *models.Application) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(application).Error)
}

func (r *applicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).
		Preload("Internship.Company").
		First(&application, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &application, nil
}

func (r *applicationRepository) GetByStudentAndInternship(ctx context.Context, studentID, internshipID string) (*models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND internship_id = ?", studentID, internshipID).
		First(&application).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &application, nil
}

func (r *applicationRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.WithContext(ctx).
		Preload("Internship").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&applications).Error
	return applications, translateError(err)
}

func (r *applicationRepository) ListByInternship(ctx context.Context, internshipID string) ([]models.Application, error) {
	var applications []models.Application
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("internship_id = ?", internshipID).
		Order("created_at ASC").
		Find(&applications).Error
	return applications, translateError(err)
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id string, from, to models.ApplicationStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *applicationRepository) ListExpiredIDs(ctx context.Context, now time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Joins("JOIN internships ON internships.id = applications.internship_id").
		Where("internships.test_assignment_due_date IS NOT NULL AND internships.test_assignment_due_date < ?", now).
		Pluck("applications.id", &ids).Error
	return ids, translateError(err)
}

func (r *applicationRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Application{})
	return res.RowsAffected, translateError(res.Error)
}
