package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

const maxOutboxErrorLength = 500

type OutboxRepository interface {
	Create(ctx context.Context, event *models.OutboxEvent) error
	// ListPending returns pending and failed events that are due for another attempt.
	ListPending(ctx context.Context, now time.Time, limit int) ([]models.OutboxEvent, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id, reason string, nextRetryAt time.Time) error
	DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// CountUnsentBefore counts pending and failed events created before cutoff.
	CountUnsentBefore(ctx context.Context, cutoff time.Time) (int64, error)
	WithTx(tx *gorm.DB) OutboxRepository
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) WithTx(tx *gorm.DB) OutboxRepository {
	return &outboxRepository{db: tx}
}

func (r *outboxRepository) Create(ctx context.Context, event *models.OutboxEvent) error {
	if event.Status == "" {
		event.Status = models.OutboxPending
	}
	return translateError(r.db.WithContext(ctx).Create(event).Error)
}

func (r *outboxRepository) ListPending(ctx context.Context, now time.Time, limit int) ([]models.OutboxEvent, error) {
	var events []models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{models.OutboxPending, models.OutboxFailed}).
		Where("next_retry_at IS NULL OR next_retry_at <= ?", now).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, translateError(err)
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	return translateError(r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        models.OutboxSent,
			"processed_at":  at,
			"error_message": "",
		}).Error)
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id, reason string, nextRetryAt time.Time) error {
	if len(reason) > maxOutboxErrorLength {
		reason = reason[:maxOutboxErrorLength]
	}
	return translateError(r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        models.OutboxFailed,
			"retry_count":   gorm.Expr("retry_count + 1"),
			"error_message": reason,
			"next_retry_at": nextRetryAt,
		}).Error)
}

func (r *outboxRepository) DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND processed_at < ?", models.OutboxSent, cutoff).
		Delete(&models.OutboxEvent{})
	return res.RowsAffected, translateError(res.Error)
}

func (r *outboxRepository) CountUnsentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("status IN ? AND created_at < ?", []string{models.OutboxPending, models.OutboxFailed}, cutoff).
		Count(&count).Error
	return count, translateError(err)
}
