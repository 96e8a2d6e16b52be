package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	ListByStudent(ctx context.Context, studentID string) ([]models.Assignment, error)
	WithTx(tx *gorm.DB) AssignmentRepository
}

type assignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) WithTx(tx *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: tx}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return translateError(r.db.WithContext(ctx).Create(assignment).Error)
}

func (r *assignmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Order("due_date ASC").Find(&assignments).Error
	return assignments, translateError(err)
}
