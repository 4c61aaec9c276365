package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

const TopicOrderEvents = "order_events"

const (
	EventOrderCreated       = "order.created"
	EventOrderPaid          = "order.paid"
	EventOrderStatusChanged = "order.status_changed"
)

type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    uuid.UUID `json:"order_id"`
	UserID     uuid.UUID `json:"user_id"`
	Status     string    `json:"status"`
	PrevStatus string    `json:"prev_status,omitempty"`
	TotalPrice string    `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

func newOrderEvent(typ string, o *models.Order, status, prev domain.OrderStatus) OrderEvent {
	return OrderEvent{
		Type:       typ,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Status:     string(status),
		PrevStatus: string(prev),
		TotalPrice: o.TotalPrice.StringFixed(2),
		OccurredAt: time.Now().UTC(),
	}
}

type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c()
}

// notFoundAs swaps gorm's record-not-found for a domain error.
func notFoundAs(err, as error) error {
	if repo.IsNotFound(err) {
		return as
	}
	return err
}

func validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}
