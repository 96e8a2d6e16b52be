package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

type InvitationRepository interface {
	Create(ctx context.Context, invitation *models.CompanyInvitation) error
	GetByID(ctx context.Context, id string) (*models.CompanyInvitation, error)
	GetByTokenHash(ctx context.Context, hash string) (*models.CompanyInvitation, error)
	// FindPending returns an unaccepted invitation for email that has not expired at now.
	FindPending(ctx context.Context, companyID, email string, now time.Time) (*models.CompanyInvitation, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.CompanyInvitation, error)
	RotateToken(ctx context.Context, id, hash string, issuedAt, expiresAt time.Time) error
	// MarkAccepted sets accepted_at only while it is still null and reports whether it did.
	MarkAccepted(ctx context.Context, id, userID string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) error
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// CountUnacceptedByCustomRole counts invitations, expired ones included, that would still
	// grant roleID when accepted or resent.
	CountUnacceptedByCustomRole(ctx context.Context, roleID string) (int64, error)
	WithTx(tx *gorm.DB) InvitationRepository
}

type invitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) WithTx(tx *gorm.DB) InvitationRepository {
	return &invitationRepository{db: tx}
}

func (r *invitationRepository) Create(ctx context.Context, invitation *models.CompanyInvitation) error {
	invitation.Email = strings.ToLower(strings.TrimSpace(invitation.Email))
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(invitation).Error)
}

func (r *invitationRepository) GetByID(ctx context.Context, id string) (*models.CompanyInvitation, error) {
	var invitation models.CompanyInvitation
	if err := r.db.WithContext(ctx).Preload("Company").First(&invitation, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &invitation, nil
}

func (r *invitationRepository) GetByTokenHash(ctx context.Context, hash string) (*models.CompanyInvitation, error) {
	var invitation models.CompanyInvitation
	if err := r.db.WithContext(ctx).Preload("Company").First(&invitation, "token_hash = ?", hash).Error; err != nil {
		return nil, translateError(err)
	}
	return &invitation, nil
}

func (r *invitationRepository) FindPending(ctx context.Context, companyID, email string, now time.Time) (*models.CompanyInvitation, error) {
	var invitation models.CompanyInvitation
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND email = ? AND accepted_at IS NULL AND expires_at > ?",
			companyID, strings.ToLower(strings.TrimSpace(email)), now).
		First(&invitation).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &invitation, nil
}

func (r *invitationRepository) ListByCompany(ctx context.Context, companyID string) ([]models.CompanyInvitation, error) {
	var invitations []models.CompanyInvitation
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("issued_at DESC").
		Find(&invitations).Error
	return invitations, translateError(err)
}

func (r *invitationRepository) RotateToken(ctx context.Context, id, hash string, issuedAt, expiresAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.CompanyInvitation{}).
		Where("id = ? AND accepted_at IS NULL", id).
		Updates(map[string]any{
			"token_hash": hash,
			"issued_at":  issuedAt,
			"expires_at": expiresAt,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *invitationRepository) MarkAccepted(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CompanyInvitation{}).
		Where("id = ? AND accepted_at IS NULL", id).
		Updates(map[string]any{
			"accepted_at": at,
			"accepted_by": userID,
		})
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *invitationRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.CompanyInvitation{}, "id = ?", id)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *invitationRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("accepted_at IS NULL AND expires_at < ?", cutoff).
		Delete(&models.CompanyInvitation{})
	return res.RowsAffected, translateError(res.Error)
}

func (r *invitationRepository) CountUnacceptedByCustomRole(ctx context.Context, roleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CompanyInvitation{}).
		Where("custom_role_id = ? AND accepted_at IS NULL", roleID).
		Count(&count).Error
	return count, translateError(err)
}
