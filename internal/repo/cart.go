package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) preloadCart(ctx context.Context) *gorm.DB {
	return r.db(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id") }).
		Preload("Items.Product").
		Preload("Coupon")
}

// ensureCart creates the user's cart on first access. Concurrent first
// accesses converge on the same row through the unique user_id.
func (r *GormRepo) ensureCart(ctx context.Context, userID uuid.UUID) error {
	cart := models.Cart{UserID: userID}
	return r.db(ctx).Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&cart).Error
}

// GetOrCreateCart returns the user's cart, creating it on first access.
func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if err := r.ensureCart(ctx, userID); err != nil {
		return nil, err
	}
	return r.GetCart(ctx, userID)
}

// LockOrCreateCart is LockCart for callers that may be the first to touch
// the cart. Cart edits hold this lock so they queue behind a checkout.
func (r *GormRepo) LockOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if err := r.ensureCart(ctx, userID); err != nil {
		return nil, err
	}
	return r.LockCart(ctx, userID)
}

func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.preloadCart(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// LockCart takes the cart row exclusively so two checkouts of the same cart
// serialize.
func (r *GormRepo) LockCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db(ctx).Clauses(forUpdate()).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	var items []models.CartItem
	if err := r.db(ctx).Where("cart_id = ?", cart.ID).Order("product_id").Find(&items).Error; err != nil {
		return nil, err
	}
	cart.Items = items
	return &cart, nil
}

func (r *GormRepo) FindCartItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveCartItem inserts or updates the line. A concurrent insert of the same
// product surfaces as a conflict the client can retry.
func (r *GormRepo) SaveCartItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		err := r.db(ctx).Omit(clause.Associations).Create(item).Error
		if isDuplicate(err) {
			return fmt.Errorf("%w: product was added to the cart concurrently, retry", domain.ErrConflict)
		}
		return err
	}
	return r.db(ctx).Model(&models.CartItem{}).Where("id = ?", item.ID).Update("quantity", item.Quantity).Error
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, cartID, productID uuid.UUID) (int64, error) {
	res := r.db(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) SetCartCoupon(ctx context.Context, cartID uuid.UUID, couponID *uuid.UUID) error {
	return r.db(ctx).Model(&models.Cart{}).Where("id = ?", cartID).Update("coupon_id", couponID).Error
}

// ClearCart removes every line and detaches the coupon.
func (r *GormRepo) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	if err := r.db(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return r.SetCartCoupon(ctx, cartID, nil)
}

// ClearCheckedOut removes only the lines a checkout read from cart and
// detaches the coupon. A line added after the read stays in the cart.
func (r *GormRepo) ClearCheckedOut(ctx context.Context, cart *models.Cart) error {
	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.ID)
	}
	if len(ids) > 0 {
		if err := r.db(ctx).Where("cart_id = ? AND id IN ?", cart.ID, ids).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
	}
	return r.SetCartCoupon(ctx, cart.ID, nil)
}
