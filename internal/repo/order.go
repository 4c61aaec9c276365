package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db(ctx).Create(order).Error
}

func (r *GormRepo) withItems(ctx context.Context) *gorm.DB {
	return r.db(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.product_name") })
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.withItems(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) LockOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db(ctx).Clauses(forUpdate()).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := r.withItems(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, offset, limit int) (int64, []models.Order, error) {
	var total int64
	if err := r.db(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	orders := make([]models.Order, 0, limit)
	if err := r.withItems(ctx).Order("created_at DESC").Offset(offset).Limit(limit).Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) SetPaymentIntent(ctx context.Context, orderID uuid.UUID, intentID string) error {
	err := r.db(ctx).Model(&models.Order{}).Where("id = ?", orderID).Update("payment_intent_id", intentID).Error
	if isDuplicate(err) {
		return fmt.Errorf("%w: payment intent %s already linked to another order", domain.ErrConflict, intentID)
	}
	return err
}

// TransitionStatus moves the order only if it is still in from. The returned
// bool is false when another writer got there first.
func (r *GormRepo) TransitionStatus(ctx context.Context, orderID uuid.UUID, from, to domain.OrderStatus) (bool, error) {
	res := r.db(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
