package outbox

import (
	"context"
	"errors"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/logger"
	"github.com/SimoSabev/LynkSkill-sub003/pkg/metrics"
)

const (
	defaultPollInterval = 3 * time.Second
	defaultBatchSize    = 50
	defaultBaseBackoff  = 5 * time.Second
	maxBackoff          = 30 * time.Minute
)

//go:generate mockgen -source=relay.go -destination=mock/relay_mock.go -package=mock

// MessageWriter is the part of *kafkago.Writer the relay needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Store is the outbox persistence used by the relay.
type Store interface {
	ListPending(ctx context.Context, now time.Time, limit int) ([]models.OutboxEvent, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id, reason string, nextRetryAt time.Time) error
}

// Options tunes the relay loop.
type Options struct {
	PollInterval time.Duration
	BatchSize    int
	BaseBackoff  time.Duration
}

// Relay publishes pending outbox events to the broker. Failed events are retried with
// exponential backoff.
type Relay struct {
	store  Store
	writer MessageWriter
	opts   Options
	log    *zap.Logger
	now    func() time.Time
}

// NewRelay builds a relay over store and writer.
func NewRelay(store Store, writer MessageWriter, opts Options) (*Relay, error) {
	if store == nil {
		return nil, errors.New("outbox relay: store is required")
	}
	if writer == nil {
		return nil, errors.New("outbox relay: writer is required")
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = defaultBaseBackoff
	}
	return &Relay{
		store:  store,
		writer: writer,
		opts:   opts,
		log:    logger.WithModule("outbox"),
		now:    time.Now,
	}, nil
}

// Run polls the outbox until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	r.log.Info("outbox relay started", zap.Duration("poll_interval", r.opts.PollInterval))
	for {
		select {
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.log.Error("process outbox events failed", zap.Error(err))
			}
		}
	}
}

// Flush publishes one batch and returns how many events were sent.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	events, err := r.store.ListPending(ctx, r.now().UTC(), r.opts.BatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range events {
		event := &events[i]
		if err := r.writer.WriteMessages(ctx, Message(event)); err != nil {
			metrics.OutboxPublished.WithLabelValues("failed").Inc()
			next := r.now().UTC().Add(Backoff(r.opts.BaseBackoff, event.RetryCount))
			r.log.Warn("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", event.Topic),
				zap.Int("retry_count", event.RetryCount),
				zap.Error(err))
			if markErr := r.store.MarkFailed(ctx, event.ID, err.Error(), next); markErr != nil {
				r.log.Error("mark outbox failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			continue
		}

		metrics.OutboxPublished.WithLabelValues("sent").Inc()
		if err := r.store.MarkSent(ctx, event.ID, r.now().UTC()); err != nil {
			r.log.Error("mark outbox sent failed", zap.String("outbox_id", event.ID), zap.Error(err))
			continue
		}
		sent++
	}

	if sent > 0 {
		r.log.Debug("outbox events sent", zap.Int("count", sent))
	}
	return sent, nil
}

// Message converts an outbox row into a broker message keyed by aggregate id.
func Message(event *models.OutboxEvent) kafkago.Message {
	return kafkago.Message{
		Topic: event.Topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}
}

// Backoff doubles base for every prior attempt, capped at 30 minutes.
func Backoff(base time.Duration, attempts int) time.Duration {
	d := base
	for i := 0; i < attempts; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
