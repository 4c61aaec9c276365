package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
)

// AddOutbox must be called on a tx repo so the event commits or rolls back
// together with the change it describes.
func (r *GormRepo) AddOutbox(ctx context.Context, topic, key, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ev := models.OutboxEvent{
		Topic:     topic,
		Key:       key,
		Type:      eventType,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}
	return r.db(ctx).Create(&ev).Error
}

func (r *GormRepo) FetchPendingOutbox(ctx context.Context, topic string, limit int) ([]models.OutboxEvent, error) {
	var out []models.OutboxEvent
	if err := r.db(ctx).Where("sent_at IS NULL AND topic = ?", topic).Order("id ASC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) MarkOutboxSent(ctx context.Context, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db(ctx).Model(&models.OutboxEvent{}).Where("id IN ?", ids).Update("sent_at", at).Error
}
