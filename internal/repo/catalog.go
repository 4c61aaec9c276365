package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LockProduct reads the product row with an exclusive lock held until the
// surrounding transaction ends.
func (r *GormRepo) LockProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db(ctx).Clauses(forUpdate()).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DecrementStock never takes stock below zero; ok is false when the guard
// rejected the update.
func (r *GormRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (ok bool, err error) {
	res := r.db(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// productQuery applies the listing filter. The search term is matched as a
// literal substring of name or description.
func (r *GormRepo) productQuery(ctx context.Context, f transport.ProductFilter) *gorm.DB {
	q := r.db(ctx).Model(&models.Product{})
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if term := strings.TrimSpace(f.Q); term != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, like, like)
	}
	return q
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (r *GormRepo) ListProducts(ctx context.Context, f transport.ProductFilter, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.productQuery(ctx, f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.productQuery(ctx, f).Order("created_at DESC, id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.InTx(ctx, func(tx *GormRepo) error {
		var n int64
		if err := tx.db(ctx).Model(&models.Product{}).Where("sku = ?", prod.SKU).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: sku %q already exists", domain.ErrConflict, prod.SKU)
		}
		if prod.CategoryID != nil {
			if _, err := tx.GetCategory(ctx, *prod.CategoryID); err != nil {
				if IsNotFound(err) {
					return domain.ErrCategoryNotFound
				}
				return err
			}
		}
		if err := tx.db(ctx).Create(prod).Error; err != nil {
			if isDuplicate(err) {
				return fmt.Errorf("%w: sku %q already exists", domain.ErrConflict, prod.SKU)
			}
			return err
		}
		return nil
	})
}

func (r *GormRepo) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	var prod models.Product
	err := r.InTx(ctx, func(tx *GormRepo) error {
		if err := tx.db(ctx).Clauses(forUpdate()).Where("id = ?", id).First(&prod).Error; err != nil {
			return err
		}

		if req.SKU != nil && *req.SKU != prod.SKU {
			var n int64
			if err := tx.db(ctx).Model(&models.Product{}).Where("sku = ? AND id <> ?", *req.SKU, id).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: sku %q already exists", domain.ErrConflict, *req.SKU)
			}
			prod.SKU = *req.SKU
		}
		if req.Name != nil {
			prod.Name = *req.Name
		}
		if req.Description != nil {
			prod.Description = *req.Description
		}
		switch {
		case req.ClearCategory:
			prod.CategoryID = nil
		case req.CategoryID != nil:
			if _, err := tx.GetCategory(ctx, *req.CategoryID); err != nil {
				if IsNotFound(err) {
					return domain.ErrCategoryNotFound
				}
				return err
			}
			prod.CategoryID = req.CategoryID
		}
		if req.Price != nil {
			prod.Price = *req.Price
		}
		if req.Stock != nil {
			prod.Stock = *req.Stock
		}
		if req.Weight != nil {
			prod.Weight = *req.Weight
		}
		if req.Height != nil {
			prod.Height = *req.Height
		}
		if req.Width != nil {
			prod.Width = *req.Width
		}
		if req.Length != nil {
			prod.Length = *req.Length
		}

		if err := tx.db(ctx).Save(&prod).Error; err != nil {
			if isDuplicate(err) {
				return fmt.Errorf("%w: sku %q already exists", domain.ErrConflict, prod.SKU)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

// DeleteProduct drops cart lines and reviews referencing the product and
// detaches historical order items before removing the row.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.InTx(ctx, func(tx *GormRepo) error {
		if _, err := tx.LockProduct(ctx, id); err != nil {
			return err
		}
		if err := tx.db(ctx).Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.db(ctx).Where("product_id = ?", id).Delete(&models.ProductReview{}).Error; err != nil {
			return err
		}
		if err := tx.db(ctx).Model(&models.OrderItem{}).Where("product_id = ?", id).Update("product_id", nil).Error; err != nil {
			return err
		}
		return tx.db(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
	})
}
