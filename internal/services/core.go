package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/identity"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/permissions"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
	apperrors "github.com/SimoSabev/LynkSkill-sub003/pkg/errors"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/metrics"
)

// Core bundles the collaborators shared by every workflow service. DB, Repos and Permissions
// are required; the rest degrade to no-ops when nil.
type Core struct {
	DB            *gorm.DB
	Repos         *repository.Repositories
	Permissions   *permissions.Checker
	Invalidator   permissions.Invalidator
	Notifications *NotificationService
	Audit         *AuditService
	Events        *EventWriter
	Syncer        identity.MetadataSyncer
	Now           func() time.Time
}

func (c Core) validate(service string) error {
	switch {
	case c.DB == nil:
		return errors.New(service + ": db is required")
	case c.Repos == nil:
		return errors.New(service + ": repositories are required")
	case c.Permissions == nil:
		return errors.New(service + ": permission checker is required")
	}
	return nil
}

func (c Core) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

// inTx runs fn with repositories bound to a single transaction.
func (c Core) inTx(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(c.Repos.WithTx(tx))
	})
}

func (c Core) invalidate(ctx context.Context, log *zap.Logger, userIDs ...string) {
	if c.Invalidator == nil || len(userIDs) == 0 {
		return
	}
	if err := c.Invalidator.Invalidate(ctx, userIDs...); err != nil {
		log.Warn("invalidate permission cache", zap.Strings("user_ids", userIDs), zap.Error(err))
	}
}

func (c Core) notify(ctx context.Context, log *zap.Logger, recipientID string, payload Payload) {
	if c.Notifications == nil || recipientID == "" {
		return
	}
	if _, err := c.Notifications.Notify(ctx, recipientID, payload); err != nil {
		metrics.SideEffectFailures.WithLabelValues("notification").Inc()
		log.Warn("send notification",
			zap.String("recipient_id", recipientID),
			zap.String("type", payload.Type()),
			zap.Error(err))
	}
}

func (c Core) syncMetadata(ctx context.Context, log *zap.Logger, externalID string, meta identity.PublicMetadata) {
	if c.Syncer == nil || externalID == "" {
		return
	}
	if err := c.Syncer.SyncPublicMetadata(ctx, externalID, meta); err != nil {
		metrics.SideEffectFailures.WithLabelValues("identity_sync").Inc()
		log.Warn("sync identity metadata",
			zap.String("external_id", externalID),
			zap.String("role", string(meta.Role)),
			zap.Error(err))
	}
}

func (c Core) publish(ctx context.Context, log *zap.Logger, aggregate, aggregateID, eventType string, data any) {
	if c.Events == nil {
		return
	}
	if err := c.Events.Record(ctx, aggregate, aggregateID, eventType, data); err != nil {
		metrics.SideEffectFailures.WithLabelValues("outbox").Inc()
		log.Warn("record outbox event",
			zap.String("event_type", eventType),
			zap.String("aggregate_id", aggregateID),
			zap.Error(err))
	}
}

// createActiveMembership inserts member inside a transaction. The active membership is
// re-read under the transaction and the store's unique index backs it up, so concurrent
// joins for the same user cannot both succeed.
func createActiveMembership(ctx context.Context, repos *repository.Repositories, member *models.CompanyMember) error {
	if _, err := repos.Members.FindActiveByUser(ctx, member.UserID); err == nil {
		return ErrAlreadyMember
	} else if !repository.IsNotFound(err) {
		return err
	}
	if err := repos.Members.Create(ctx, member); err != nil {
		if repository.IsDuplicate(err) {
			return ErrAlreadyMember
		}
		return err
	}
	return nil
}

func requirePrincipal(p *auth.Principal) error {
	if p == nil || p.UserID == "" {
		return apperrors.ErrUnauthenticated
	}
	return nil
}

// lookupError maps a repository read failure onto notFound or an internal error.
func lookupError(err error, notFound *apperrors.AppError) error {
	if repository.IsNotFound(err) {
		return notFound
	}
	return apperrors.ErrInternal.WithInternal(err)
}

func internal(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.ErrInternal.WithInternal(err)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
