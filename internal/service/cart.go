package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CartService struct {
	Repo *repo.GormRepo
	Now  Clock
}

func (s *CartService) View(ctx context.Context, p domain.Principal) (*transport.CartView, error) {
	if !p.CartEligible() {
		return nil, domain.ErrNoCart
	}
	cart, err := s.Repo.GetOrCreateCart(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return s.view(cart), nil
}

// view prices the cart at current product prices.
func (s *CartService) view(cart *models.Cart) *transport.CartView {
	v := &transport.CartView{ID: cart.ID, Items: make([]transport.CartItemView, 0, len(cart.Items))}

	subtotal := decimal.Zero
	for _, it := range cart.Items {
		line := it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(line)
		v.Items = append(v.Items, transport.CartItemView{
			ProductID: it.ProductID,
			Name:      it.Product.Name,
			UnitPrice: it.Product.Price.StringFixed(2),
			Quantity:  it.Quantity,
			Stock:     it.Product.Stock,
			LineTotal: line.StringFixed(2),
		})
	}

	discount := decimal.Zero
	if c := cart.Coupon; c != nil {
		v.Coupon = &transport.CouponView{Code: c.Code, DiscountPercent: c.DiscountPercent.String()}
		if c.ValidAt(s.Now.now()) {
			discount = domain.Discount(subtotal, c.DiscountPercent)
		}
	}

	v.Subtotal = subtotal.StringFixed(2)
	v.Discount = discount.StringFixed(2)
	v.Total = subtotal.Sub(discount).StringFixed(2)
	return v
}

// mutate runs fn inside a transaction holding the principal's cart lock and
// returns the refreshed view. cart carries its lines but not their products.
func (s *CartService) mutate(ctx context.Context, p domain.Principal, fn func(tx *repo.GormRepo, cart *models.Cart) error) (*transport.CartView, error) {
	if !p.CartEligible() {
		return nil, domain.ErrNoCart
	}
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.LockOrCreateCart(ctx, p.ID)
		if err != nil {
			return err
		}
		return fn(tx, cart)
	})
	if err != nil {
		return nil, err
	}
	return s.View(ctx, p)
}

func (s *CartService) AddItem(ctx context.Context, p domain.Principal, productID uuid.UUID, qty int) (*transport.CartView, error) {
	if productID == uuid.Nil {
		return nil, validation("product_id required")
	}
	if qty < 1 {
		return nil, validation("quantity must be >= 1")
	}

	return s.mutate(ctx, p, func(tx *repo.GormRepo, cart *models.Cart) error {
		prod, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return notFoundAs(err, domain.ErrProductNotFound)
		}

		item, err := tx.FindCartItem(ctx, cart.ID, productID)
		switch {
		case repo.IsNotFound(err):
			item = &models.CartItem{CartID: cart.ID, ProductID: productID}
		case err != nil:
			return err
		}

		want := item.Quantity + qty
		if want > prod.Stock {
			return &domain.InsufficientStockError{ProductID: prod.ID, Name: prod.Name, Requested: want, Available: prod.Stock}
		}
		item.Quantity = want
		return tx.SaveCartItem(ctx, item)
	})
}

// SetQuantity overwrites the line; qty <= 0 removes it.
func (s *CartService) SetQuantity(ctx context.Context, p domain.Principal, productID uuid.UUID, qty int) (*transport.CartView, error) {
	return s.mutate(ctx, p, func(tx *repo.GormRepo, cart *models.Cart) error {
		item, err := tx.FindCartItem(ctx, cart.ID, productID)
		if err != nil {
			return notFoundAs(err, domain.ErrNotInCart)
		}
		if qty <= 0 {
			_, err := tx.DeleteCartItem(ctx, cart.ID, productID)
			return err
		}

		prod, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return notFoundAs(err, domain.ErrProductNotFound)
		}
		if qty > prod.Stock {
			return &domain.InsufficientStockError{ProductID: prod.ID, Name: prod.Name, Requested: qty, Available: prod.Stock}
		}
		item.Quantity = qty
		return tx.SaveCartItem(ctx, item)
	})
}

func (s *CartService) RemoveItem(ctx context.Context, p domain.Principal, productID uuid.UUID) (*transport.CartView, error) {
	return s.mutate(ctx, p, func(tx *repo.GormRepo, cart *models.Cart) error {
		n, err := tx.DeleteCartItem(ctx, cart.ID, productID)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotInCart
		}
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context, p domain.Principal) (*transport.CartView, error) {
	return s.mutate(ctx, p, func(tx *repo.GormRepo, cart *models.Cart) error {
		return tx.ClearCart(ctx, cart.ID)
	})
}

func (s *CartService) ApplyCoupon(ctx context.Context, p domain.Principal, code string) (*transport.CartView, error) {
	code, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, p, func(tx *repo.GormRepo, cart *models.Cart) error {
		lookup := &CouponService{Repo: tx}
		c, err := lookup.LookupValid(ctx, code, s.Now.now())
		if err != nil {
			return err
		}
		return tx.SetCartCoupon(ctx, cart.ID, &c.ID)
	})
}

func (s *CartService) RemoveCoupon(ctx context.Context, p domain.Principal) (*transport.CartView, error) {
	return s.mutate(ctx, p, func(tx *repo.GormRepo, cart *models.Cart) error {
		if cart.CouponID == nil {
			return nil
		}
		return tx.SetCartCoupon(ctx, cart.ID, nil)
	})
}
