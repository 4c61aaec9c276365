package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

type CheckoutService struct {
	Repo    *repo.GormRepo
	Now     Clock
	Metrics *metrics.Shop
}

// CreateOrderFromCart turns the principal's cart into a pending_payment order.
// Stock decrements, order creation, cart clearing and the order.created event
// commit together or not at all. Products are locked in product id order so
// concurrent checkouts over overlapping products cannot deadlock.
func (s *CheckoutService) CreateOrderFromCart(ctx context.Context, p domain.Principal) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.create_order")

	if !p.CartEligible() {
		return nil, domain.ErrNoCart
	}

	var orderID uuid.UUID
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.LockCart(ctx, p.ID)
		if repo.IsNotFound(err) {
			return domain.ErrEmptyCart
		}
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return domain.ErrEmptyCart
		}

		percent := decimal.Zero
		var couponCode *string
		if cart.CouponID != nil {
			c, err := tx.GetCoupon(ctx, *cart.CouponID)
			if err != nil && !repo.IsNotFound(err) {
				return err
			}
			if c == nil || !c.ValidAt(s.Now.now()) {
				return domain.ErrCouponNoLongerValid
			}
			percent = c.DiscountPercent
			code := c.Code
			couponCode = &code
		}

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, line := range cart.Items {
			prod, err := tx.LockProduct(ctx, line.ProductID)
			if repo.IsNotFound(err) {
				return &domain.ProductGoneError{ProductID: line.ProductID}
			}
			if err != nil {
				return err
			}

			short := &domain.InsufficientStockError{
				ProductID: prod.ID,
				Name:      prod.Name,
				Requested: line.Quantity,
				Available: prod.Stock,
			}
			if prod.Stock < line.Quantity {
				return short
			}
			ok, err := tx.DecrementStock(ctx, prod.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// the locked read was stale; report what is left now
				if cur, err := tx.GetProduct(ctx, prod.ID); err == nil {
					short.Available = cur.Stock
				}
				return short
			}

			subtotal = subtotal.Add(prod.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			pid := prod.ID
			items = append(items, models.OrderItem{
				ProductID:       &pid,
				ProductName:     prod.Name,
				Quantity:        line.Quantity,
				PriceAtPurchase: prod.Price,
			})
		}

		discount := decimal.Zero
		if couponCode != nil {
			discount = domain.Discount(subtotal, percent)
		}

		order := &models.Order{
			UserID:         p.ID,
			TotalPrice:     subtotal.Sub(discount),
			DiscountAmount: discount,
			CouponCodeUsed: couponCode,
			Status:         string(domain.StatusPendingPayment),
			Items:          items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		if err := tx.ClearCheckedOut(ctx, cart); err != nil {
			return err
		}
		ev := newOrderEvent(EventOrderCreated, order, domain.StatusPendingPayment, "")
		if err := tx.AddOutbox(ctx, TopicOrderEvents, order.ID.String(), EventOrderCreated, ev); err != nil {
			return err
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		outcome := checkoutOutcome(err)
		s.Metrics.Checkout(outcome)
		if outcome == "error" {
			l.Error("checkout_error", "status", 500, "error", err)
		} else {
			l.Warn("checkout_rejected", "reason", outcome, "error", err)
		}
		return nil, err
	}

	s.Metrics.Checkout("ok")
	l.Info("checkout_success", "order_id", orderID)
	return s.Repo.GetOrder(ctx, orderID)
}

func checkoutOutcome(err error) string {
	var gone *domain.ProductGoneError
	var short *domain.InsufficientStockError
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrCouponNoLongerValid):
		return "coupon_invalid"
	case errors.As(err, &gone):
		return "product_gone"
	case errors.As(err, &short):
		return "insufficient_stock"
	default:
		return "error"
	}
}
