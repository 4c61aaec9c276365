// Package repotest opens throwaway sqlite databases with the shop schema.
package repotest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/db"
)

// New returns a migrated database backed by a file in t.TempDir(). A single
// connection is used so that concurrent transactions queue the way row locks
// make them queue on postgres.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shop.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)

	gdb, err := db.OpenWithPool(context.Background(), dsn, db.PoolOptions{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Product inserts a product with sane shipping dimensions. Name doubles as SKU.
func Product(t *testing.T, gdb *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		SKU:    name + "-" + uuid.NewString()[:8],
		Name:   name,
		Price:  Dec(price),
		Stock:  stock,
		Weight: Dec("0.5"),
		Height: Dec("4"),
		Width:  Dec("12"),
		Length: Dec("18"),
	}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func Coupon(t *testing.T, gdb *gorm.DB, code, percent string, expiresAt *time.Time, active bool) *models.Coupon {
	t.Helper()
	c := &models.Coupon{
		Code:            code,
		DiscountPercent: Dec(percent),
		ExpiresAt:       expiresAt,
		IsActive:        active,
	}
	require.NoError(t, gdb.Create(c).Error)
	return c
}

// Cart creates the user's cart holding the given product quantities.
func Cart(t *testing.T, gdb *gorm.DB, userID uuid.UUID, lines map[*models.Product]int) *models.Cart {
	t.Helper()
	cart := &models.Cart{UserID: userID}
	require.NoError(t, gdb.Omit("Items", "Coupon").Create(cart).Error)
	for p, qty := range lines {
		item := &models.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: qty}
		require.NoError(t, gdb.Omit("Product").Create(item).Error)
	}
	return cart
}

func Stock(t *testing.T, gdb *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var p models.Product
	require.NoError(t, gdb.Where("id = ?", productID).First(&p).Error)
	return p.Stock
}

func Count(t *testing.T, gdb *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(model).Count(&n).Error)
	return n
}
