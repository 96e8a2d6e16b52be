package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

type MemberRepository interface {
	Create(ctx context.Context, member *models.CompanyMember) error
	GetByID(ctx context.Context, id string) (*models.CompanyMember, error)
	// FindActiveByUser returns the caller's ACTIVE membership with its custom role preloaded.
	FindActiveByUser(ctx context.Context, userID string) (*models.CompanyMember, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.CompanyMember, error)
	CountActive(ctx context.Context, companyID string) (int64, error)
	CountByCustomRole(ctx context.Context, roleID string) (int64, error)
	ListUserIDsByCustomRole(ctx context.Context, roleID string) ([]string, error)
	// DetachCustomRole clears roleID from memberships that are no longer ACTIVE, falling back
	// to MEMBER where the row has no default role.
	DetachCustomRole(ctx context.Context, roleID string) (int64, error)
	Update(ctx context.Context, member *models.CompanyMember) error
	WithTx(tx *gorm.DB) MemberRepository
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) WithTx(tx *gorm.DB) MemberRepository {
	return &memberRepository{db: tx}
}

func (r *memberRepository) Create(ctx context.Context, member *models.CompanyMember) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error)
}

func (r *memberRepository) GetByID(ctx context.Context, id string) (*models.CompanyMember, error) {
	var member models.CompanyMember
	err := r.db.WithContext(ctx).
		Preload("CustomRole").
		Preload("User").
		First(&member, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &member, nil
}

func (r *memberRepository) FindActiveByUser(ctx context.Context, userID string) (*models.CompanyMember, error) {
	var member models.CompanyMember
	err := r.db.WithContext(ctx).
		Preload("CustomRole").
		Where("user_id = ? AND status = ?", userID, models.MemberStatusActive).
		First(&member).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &member, nil
}

func (r *memberRepository) ListByCompany(ctx context.Context, companyID string) ([]models.CompanyMember, error) {
	var members []models.CompanyMember
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("CustomRole").
		Where("company_id = ? AND status = ?", companyID, models.MemberStatusActive).
		Order("joined_at ASC").
		Find(&members).Error
	return members, translateError(err)
}

func (r *memberRepository) CountActive(ctx context.Context, companyID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CompanyMember{}).
		Where("company_id = ? AND status = ?", companyID, models.MemberStatusActive).
		Count(&count).Error
	return count, translateError(err)
}

func (r *memberRepository) CountByCustomRole(ctx context.Context, roleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CompanyMember{}).
		Where("custom_role_id = ? AND status = ?", roleID, models.MemberStatusActive).
		Count(&count).Error
	return count, translateError(err)
}

func (r *memberRepository) ListUserIDsByCustomRole(ctx context.Context, roleID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.CompanyMember{}).
		Where("custom_role_id = ? AND status = ?", roleID, models.MemberStatusActive).
		Pluck("user_id", &ids).Error
	return ids, translateError(err)
}

func (r *memberRepository) DetachCustomRole(ctx context.Context, roleID string) (int64, error) {
	inactive := r.db.WithContext(ctx).
		Model(&models.CompanyMember{}).
		Where("custom_role_id = ? AND status <> ?", roleID, models.MemberStatusActive)

	if err := inactive.Session(&gorm.Session{}).
		Where("default_role IS NULL").
		Update("default_role", models.MemberRoleMember).Error; err != nil {
		return 0, translateError(err)
	}
	res := inactive.Session(&gorm.Session{}).Update("custom_role_id", nil)
	return res.RowsAffected, translateError(res.Error)
}

func (r *memberRepository) Update(ctx context.Context, member *models.CompanyMember) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(member).Error)
}
