// Package outbox publishes committed outbox rows to Kafka.
package outbox

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/kafka"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

type Publisher interface {
	Publish(ctx context.Context, msgs ...kafka.Message) error
}

type Store interface {
	FetchPendingOutbox(ctx context.Context, topic string, limit int) ([]models.OutboxEvent, error)
	MarkOutboxSent(ctx context.Context, ids []uint, at time.Time) error
}

type Relay struct {
	Store     Store
	Publisher Publisher
	Topic     string
	Batch     int
	Interval  time.Duration
	Metrics   *metrics.Shop
	Log       *slog.Logger
}

// Flush publishes one batch and marks it sent. Delivery is at-least-once:
// a crash between publish and mark resends the batch.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	batch := r.Batch
	if batch <= 0 {
		batch = 100
	}

	events, err := r.Store.FetchPendingOutbox(ctx, r.Topic, batch)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	ids := make([]uint, 0, len(events))
	for _, ev := range events {
		msgs = append(msgs, kafka.Message{Key: ev.Key, Value: ev.Payload})
		ids = append(ids, ev.ID)
	}

	if err := r.Publisher.Publish(ctx, msgs...); err != nil {
		r.Metrics.OutboxResult("failed", len(msgs))
		return 0, err
	}
	if err := r.Store.MarkOutboxSent(ctx, ids, time.Now().UTC()); err != nil {
		return 0, err
	}
	r.Metrics.OutboxResult("sent", len(msgs))
	return len(msgs), nil
}

// Run flushes on every tick until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	log := r.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "outbox_relay", "topic", r.Topic)

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("outbox_relay_stopped")
			return
		case <-t.C:
		}

		for {
			n, err := r.Flush(ctx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					log.Error("outbox_flush_failed", "error", err)
				}
				break
			}
			if n == 0 {
				break
			}
			log.Info("outbox_flushed", "count", n)
		}
	}
}
