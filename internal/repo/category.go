package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	if err := r.db(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepo) ListCategories(ctx context.Context, offset, limit int) (int64, []models.Category, error) {
	var total int64
	if err := r.db(ctx).Model(&models.Category{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}
	items := make([]models.Category, 0, limit)
	if err := r.db(ctx).Order("title ASC, id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.db(ctx).Create(c).Error
}

func (r *GormRepo) UpdateCategory(ctx context.Context, id uuid.UUID, title, description string) (*models.Category, error) {
	var c models.Category
	err := r.InTx(ctx, func(tx *GormRepo) error {
		if err := tx.db(ctx).Clauses(forUpdate()).Where("id = ?", id).First(&c).Error; err != nil {
			return err
		}
		c.Title = title
		c.Description = description
		return tx.db(ctx).Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCategory leaves the category's products in the catalog without a
// category.
func (r *GormRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.InTx(ctx, func(tx *GormRepo) error {
		var c models.Category
		if err := tx.db(ctx).Clauses(forUpdate()).Where("id = ?", id).First(&c).Error; err != nil {
			return err
		}
		if err := tx.db(ctx).Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.db(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
	})
}
