package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
)

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error)
	ParseEvent(payload []byte, signature string) (*payment.Event, error)
}

type PaymentService struct {
	Repo      *repo.GormRepo
	Gateway   PaymentGateway
	ClientURL string
	Currency  string
	Timeout   time.Duration
	Metrics   *metrics.Shop
}

// BeginPayment opens a hosted checkout session for the order and returns its URL.
func (s *PaymentService) BeginPayment(ctx context.Context, p domain.Principal, orderID uuid.UUID) (string, error) {
	l := logging.FromContext(ctx).With("svc", "payment.begin", "order_id", orderID)

	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return "", notFoundAs(err, domain.ErrOrderNotFound)
	}
	if !p.IsAdmin() && o.UserID != p.ID {
		return "", fmt.Errorf("%w: order belongs to another user", domain.ErrForbidden)
	}
	switch st := domain.OrderStatus(o.Status); {
	case st.PaidOrLater():
		return "", domain.ErrOrderAlreadyPaid
	case st == domain.StatusCancelled:
		return "", domain.ErrOrderCancelled
	}
	// a fully discounted order cannot go through the provider
	if !o.TotalPrice.IsPositive() {
		l.Warn("payment_nothing_to_charge", "total_price", o.TotalPrice.StringFixed(2))
		return "", domain.ErrNothingToCharge
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sess, err := s.Gateway.CreateCheckoutSession(callCtx, s.sessionRequest(o))
	if err != nil {
		if callCtx.Err() != nil {
			return "", domain.PaymentError(http.StatusServiceUnavailable, "payment provider timed out", err)
		}
		return "", err
	}

	ref := sess.PaymentIntentID
	if ref == "" {
		ref = sess.ID
	}
	if ref != "" {
		if err := s.Repo.SetPaymentIntent(ctx, o.ID, ref); err != nil {
			l.Error("payment_intent_persist_failed", "payment_ref", ref, "error", err)
		}
	}

	l.Info("checkout_session_created", "session_id", sess.ID)
	return sess.URL, nil
}

// sessionRequest itemizes the order at frozen prices. A discounted order is
// sent as a single line so the charged amount equals total_price.
func (s *PaymentService) sessionRequest(o *models.Order) payment.SessionRequest {
	req := payment.SessionRequest{
		OrderID:    o.ID.String(),
		Currency:   s.Currency,
		SuccessURL: s.ClientURL + "/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.ClientURL + "/payment-cancelled",
	}
	if req.Currency == "" {
		req.Currency = "brl"
	}

	if o.DiscountAmount.IsPositive() {
		name := "Order " + o.ID.String()
		if o.CouponCodeUsed != nil {
			name += " (coupon " + *o.CouponCodeUsed + ")"
		}
		req.Lines = []payment.LineItem{{Name: name, UnitAmount: domain.MinorUnits(o.TotalPrice), Quantity: 1}}
		return req
	}

	for _, it := range o.Items {
		req.Lines = append(req.Lines, payment.LineItem{
			Name:       it.ProductName,
			UnitAmount: domain.MinorUnits(it.PriceAtPurchase),
			Quantity:   int64(it.Quantity),
		})
	}
	return req
}

// HandleEvent verifies and applies a provider callback. Only storage failures
// are returned as retryable; payloads the shop cannot act on are acknowledged.
func (s *PaymentService) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	l := logging.FromContext(ctx).With("svc", "payment.webhook")

	ev, err := s.Gateway.ParseEvent(payload, signature)
	if err != nil {
		s.Metrics.Webhook("rejected")
		return err
	}
	l = l.With("event_id", ev.ID, "event_type", ev.Type)

	if ev.Type != payment.EventCheckoutCompleted {
		s.Metrics.Webhook("ignored")
		return nil
	}
	if ev.OrderID == "" {
		s.Metrics.Webhook("no_order_id")
		l.Error("webhook_missing_order_id")
		return nil
	}
	orderID, err := uuid.Parse(ev.OrderID)
	if err != nil {
		s.Metrics.Webhook("no_order_id")
		l.Error("webhook_bad_order_id", "order_id", ev.OrderID, "error", err)
		return nil
	}
	if ev.PaymentStatus != payment.PaymentStatusPaid {
		s.Metrics.Webhook("not_paid")
		l.Info("webhook_payment_not_paid", "order_id", orderID, "payment_status", ev.PaymentStatus)
		return nil
	}

	outcome := "paid"
	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.LockOrder(ctx, orderID)
		if repo.IsNotFound(err) {
			outcome = "unknown_order"
			return nil
		}
		if err != nil {
			return err
		}
		if o.Status != string(domain.StatusPendingPayment) {
			outcome = "duplicate"
			return nil
		}

		ok, err := tx.TransitionStatus(ctx, orderID, domain.StatusPendingPayment, domain.StatusPaid)
		if err != nil {
			return err
		}
		if !ok {
			outcome = "duplicate"
			return nil
		}
		if ev.PaymentIntentID != "" {
			if err := tx.SetPaymentIntent(ctx, orderID, ev.PaymentIntentID); err != nil {
				return err
			}
		}
		pe := newOrderEvent(EventOrderPaid, o, domain.StatusPaid, domain.StatusPendingPayment)
		return tx.AddOutbox(ctx, TopicOrderEvents, o.ID.String(), EventOrderPaid, pe)
	})
	if err != nil {
		s.Metrics.Webhook("retry")
		l.Error("webhook_persist_failed", "status", 500, "order_id", orderID, "error", err)
		return fmt.Errorf("%w: apply payment for order %s: %v", domain.ErrRetryable, orderID, err)
	}

	s.Metrics.Webhook(outcome)
	switch outcome {
	case "unknown_order":
		l.Error("webhook_unknown_order", "order_id", orderID)
	case "duplicate":
		l.Info("webhook_duplicate", "order_id", orderID)
	default:
		l.Info("order_paid", "order_id", orderID)
	}
	return nil
}
