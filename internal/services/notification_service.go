package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/SimoSabev/LynkSkill-sub003/internal/auth"
	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/notifications"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
)

const (
	defaultNotificationLimit = 25
	maxNotificationLimit     = 100
)

// Broadcaster pushes realtime events to connected users.
type Broadcaster interface {
	Broadcast(userID string, event notifications.Event)
}

// NotificationService stores in-app notifications and pushes them to live subscribers.
type NotificationService struct {
	repo repository.NotificationRepository
	hub  Broadcaster
	now  func() time.Time
}

// NewNotificationService constructs a NotificationService. hub may be nil.
func NewNotificationService(repo repository.NotificationRepository, hub Broadcaster) (*NotificationService, error) {
	if repo == nil {
		return nil, errors.New("notification service: repository is required")
	}
	return &NotificationService{repo: repo, hub: hub, now: time.Now}, nil
}

// Notify persists payload for recipientID and broadcasts it.
func (s *NotificationService) Notify(ctx context.Context, recipientID string, payload Payload) (*models.Notification, error) {
	ctx = ensureContext(ctx)
	if recipientID == "" {
		return nil, errors.New("notification service: recipient is required")
	}
	if payload == nil {
		return nil, errors.New("notification service: payload is required")
	}

	meta, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("notification service: marshal payload: %w", err)
	}

	notification := &models.Notification{
		UserID:   recipientID,
		Type:     payload.Type(),
		Title:    payload.Title(),
		Message:  payload.Message(),
		Link:     payload.Link(),
		Metadata: datatypes.JSON(meta),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, fmt.Errorf("notification service: create: %w", err)
	}

	s.broadcast(recipientID, notifications.Event{
		Event:          notifications.EventCreated,
		Notification:   notification,
		NotificationID: notification.ID,
	})
	return notification, nil
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, p *auth.Principal, unreadOnly bool, limit int) ([]models.Notification, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	limit = min(limit, maxNotificationLimit)

	rows, err := s.repo.ListByUser(ensureContext(ctx), p.UserID, unreadOnly, limit)
	if err != nil {
		return nil, internal(err)
	}
	return rows, nil
}

// MarkRead flags one of the caller's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, p *auth.Principal, notificationID string) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}

	updated, err := s.repo.MarkRead(ensureContext(ctx), notificationID, p.UserID, s.now().UTC())
	if err != nil {
		return internal(err)
	}
	if !updated {
		return ErrNotificationNotFound
	}

	s.broadcast(p.UserID, notifications.Event{Event: notifications.EventRead, NotificationID: notificationID})
	return nil
}

// MarkAllRead flags every unread notification of the caller.
func (s *NotificationService) MarkAllRead(ctx context.Context, p *auth.Principal) (int64, error) {
	if err := requirePrincipal(p); err != nil {
		return 0, err
	}

	count, err := s.repo.MarkAllRead(ensureContext(ctx), p.UserID, s.now().UTC())
	if err != nil {
		return 0, internal(err)
	}
	if count > 0 {
		s.broadcast(p.UserID, notifications.Event{Event: notifications.EventReadAll})
	}
	return count, nil
}

func (s *NotificationService) broadcast(userID string, event notifications.Event) {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(userID, event)
}
