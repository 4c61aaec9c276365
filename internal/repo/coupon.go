package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) FindCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.db(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) GetCoupon(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	var c models.Coupon
	if err := r.db(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) ListCoupons(ctx context.Context, offset, limit int) (int64, []models.Coupon, error) {
	var total int64
	if err := r.db(ctx).Model(&models.Coupon{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	items := make([]models.Coupon, 0, limit)
	if err := r.db(ctx).Order("created_at DESC, code ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) codeTaken(ctx context.Context, code string, except uuid.UUID) error {
	var n int64
	if err := r.db(ctx).Model(&models.Coupon{}).Where("code = ? AND id <> ?", code, except).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: coupon code %q already exists", domain.ErrConflict, code)
	}
	return nil
}

func (r *GormRepo) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	return r.InTx(ctx, func(tx *GormRepo) error {
		if err := tx.codeTaken(ctx, c.Code, uuid.Nil); err != nil {
			return err
		}
		if err := tx.db(ctx).Create(c).Error; err != nil {
			if isDuplicate(err) {
				return fmt.Errorf("%w: coupon code %q already exists", domain.ErrConflict, c.Code)
			}
			return err
		}
		return nil
	})
}

// UpdateCoupon loads the coupon under lock, lets apply mutate it and saves it.
func (r *GormRepo) UpdateCoupon(ctx context.Context, id uuid.UUID, apply func(c *models.Coupon) error) (*models.Coupon, error) {
	var c models.Coupon
	err := r.InTx(ctx, func(tx *GormRepo) error {
		if err := tx.db(ctx).Clauses(forUpdate()).Where("id = ?", id).First(&c).Error; err != nil {
			return err
		}
		if err := apply(&c); err != nil {
			return err
		}
		if err := tx.codeTaken(ctx, c.Code, c.ID); err != nil {
			return err
		}
		if err := tx.db(ctx).Save(&c).Error; err != nil {
			if isDuplicate(err) {
				return fmt.Errorf("%w: coupon code %q already exists", domain.ErrConflict, c.Code)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCoupon detaches the coupon from carts first. Orders keep their own
// snapshot of the code and discount.
func (r *GormRepo) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	return r.InTx(ctx, func(tx *GormRepo) error {
		if _, err := tx.GetCoupon(ctx, id); err != nil {
			return err
		}
		if err := tx.db(ctx).Model(&models.Cart{}).Where("coupon_id = ?", id).Update("coupon_id", nil).Error; err != nil {
			return err
		}
		return tx.db(ctx).Where("id = ?", id).Delete(&models.Coupon{}).Error
	})
}
