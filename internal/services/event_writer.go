package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/internal/repository"
)

// Aggregates and event types written to the outbox.
const (
	AggregateInvitation  = "invitation"
	AggregateCompany     = "company"
	AggregateApplication = "application"

	EventInvitationAccepted   = "invitation.accepted"
	EventMemberJoinedByCode   = "company.member_joined"
	EventApplicationSubmitted = "application.submitted"
	EventApplicationReviewed  = "application.reviewed"
	EventOfferAccepted        = "application.offer_accepted"
)

const defaultTopicPrefix = "lynkskill"

// EventEnvelope is the JSON body of every outbox message.
type EventEnvelope struct {
	EventType   string    `json:"event_type"`
	AggregateID string    `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Data        any       `json:"data"`
}

// EventWriter appends domain events to the outbox for the relay to publish.
type EventWriter struct {
	repo        repository.OutboxRepository
	topicPrefix string
	now         func() time.Time
}

// NewEventWriter builds a writer. Topics are "<prefix>.<aggregate>".
func NewEventWriter(repo repository.OutboxRepository, topicPrefix string) (*EventWriter, error) {
	if repo == nil {
		return nil, errors.New("event writer: repository is required")
	}
	topicPrefix = strings.Trim(strings.TrimSpace(topicPrefix), ".")
	if topicPrefix == "" {
		topicPrefix = defaultTopicPrefix
	}
	return &EventWriter{repo: repo, topicPrefix: topicPrefix, now: time.Now}, nil
}

// Topic returns the broker topic for an aggregate type.
func (w *EventWriter) Topic(aggregate string) string {
	return w.topicPrefix + "." + aggregate
}

// Record stores one pending event.
func (w *EventWriter) Record(ctx context.Context, aggregate, aggregateID, eventType string, data any) error {
	now := w.now().UTC()
	body, err := json.Marshal(EventEnvelope{
		EventType:   eventType,
		AggregateID: aggregateID,
		OccurredAt:  now,
		Data:        data,
	})
	if err != nil {
		return fmt.Errorf("event writer: marshal %s: %w", eventType, err)
	}

	return w.repo.Create(ensureContext(ctx), &models.OutboxEvent{
		AggregateType: aggregate,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Topic:         w.Topic(aggregate),
		Payload:       body,
		Status:        models.OutboxPending,
	})
}
