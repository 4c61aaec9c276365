package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateReview(ctx context.Context, rv *models.ProductReview) error {
	return r.InTx(ctx, func(tx *GormRepo) error {
		if _, err := tx.GetProduct(ctx, rv.ProductID); err != nil {
			return err
		}
		var n int64
		if err := tx.db(ctx).Model(&models.ProductReview{}).
			Where("product_id = ? AND user_id = ?", rv.ProductID, rv.UserID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: product already reviewed by this user", domain.ErrConflict)
		}
		if err := tx.db(ctx).Create(rv).Error; err != nil {
			if isDuplicate(err) {
				return fmt.Errorf("%w: product already reviewed by this user", domain.ErrConflict)
			}
			return err
		}
		return nil
	})
}

func (r *GormRepo) ListReviews(ctx context.Context, productID uuid.UUID, offset, limit int) (int64, []models.ProductReview, error) {
	q := r.db(ctx).Model(&models.ProductReview{}).Where("product_id = ?", productID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	items := make([]models.ProductReview, 0, limit)
	if err := r.db(ctx).Where("product_id = ?", productID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetReview(ctx context.Context, productID, reviewID uuid.UUID) (*models.ProductReview, error) {
	var rv models.ProductReview
	if err := r.db(ctx).Where("id = ? AND product_id = ?", reviewID, productID).First(&rv).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *GormRepo) DeleteReview(ctx context.Context, reviewID uuid.UUID) error {
	return r.db(ctx).Where("id = ?", reviewID).Delete(&models.ProductReview{}).Error
}
