package models

import "time"

// Outbox statuses.
const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
	OutboxFailed  = "failed"
)

// OutboxEvent is a domain event awaiting relay to the message broker.
type OutboxEvent struct {
	BaseModel

	AggregateType string     `gorm:"size:64;not null" json:"aggregate_type"`
	AggregateID   string     `gorm:"size:36;not null;index" json:"aggregate_id"`
	EventType     string     `gorm:"size:64;not null" json:"event_type"`
	Topic         string     `gorm:"size:128;not null" json:"topic"`
	Payload       []byte     `json:"payload"`
	Status        string     `gorm:"size:16;not null;index" json:"status"`
	RetryCount    int        `json:"retry_count"`
	NextRetryAt   *time.Time `gorm:"index" json:"next_retry_at,omitempty"`
	ProcessedAt   *time.Time `json:"processed_at,omitempty"`
	ErrorMessage  string     `gorm:"size:500" json:"error_message,omitempty"`
}
