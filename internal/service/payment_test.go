package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/payment"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/repo/repotest"
)

type fakeGateway struct {
	session  *payment.Session
	err      error
	block    bool
	got      *payment.SessionRequest
	event    *payment.Event
	parseErr error
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error) {
	f.got = &req
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeGateway) ParseEvent(payload []byte, signature string) (*payment.Event, error) {
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.event, nil
}

func newPayments(t *testing.T, gw *fakeGateway) (*gorm.DB, *PaymentService) {
	t.Helper()
	gdb := repotest.New(t)
	return gdb, &PaymentService{
		Repo:      repo.New(gdb),
		Gateway:   gw,
		ClientURL: "https://shop.example",
		Currency:  "brl",
		Timeout:   time.Second,
	}
}

func reload(t *testing.T, gdb *gorm.DB, id uuid.UUID) *models.Order {
	t.Helper()
	o, err := repo.New(gdb).GetOrder(context.Background(), id)
	require.NoError(t, err)
	return o
}

func TestBeginPayment_ItemizesUndiscountedOrder(t *testing.T) {
	gw := &fakeGateway{session: &payment.Session{ID: "cs_1", URL: "https://pay.example/cs_1", PaymentIntentID: "pi_1"}}
	gdb, svc := newPayments(t, gw)
	u := shopper()
	o := placeOrder(t, gdb, u, "49.90")

	url, err := svc.BeginPayment(context.Background(), u, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/cs_1", url)

	require.NotNil(t, gw.got)
	assert.Equal(t, o.ID.String(), gw.got.OrderID)
	assert.Equal(t, "brl", gw.got.Currency)
	assert.Equal(t, "https://shop.example/payment-cancelled", gw.got.CancelURL)
	require.Len(t, gw.got.Lines, 1)
	assert.EqualValues(t, 4990, gw.got.Lines[0].UnitAmount)
	assert.EqualValues(t, 1, gw.got.Lines[0].Quantity)

	got := reload(t, gdb, o.ID)
	require.NotNil(t, got.PaymentIntentID)
	assert.Equal(t, "pi_1", *got.PaymentIntentID)
}

func TestBeginPayment_DiscountedOrderIsSingleLine(t *testing.T) {
	gw := &fakeGateway{session: &payment.Session{ID: "cs_2", URL: "https://pay.example/cs_2"}}
	gdb, svc := newPayments(t, gw)
	u := shopper()

	p := repotest.Product(t, gdb, "boots", "100.00", 5)
	c := repotest.Coupon(t, gdb, "PEDIDO20", "20", nil, true)
	cart := repotest.Cart(t, gdb, u.ID, map[*models.Product]int{p: 2})
	require.NoError(t, gdb.Model(&models.Cart{}).Where("id = ?", cart.ID).Update("coupon_id", c.ID).Error)
	o, err := (&CheckoutService{Repo: repo.New(gdb)}).CreateOrderFromCart(context.Background(), u)
	require.NoError(t, err)

	_, err = svc.BeginPayment(context.Background(), u, o.ID)
	require.NoError(t, err)

	require.Len(t, gw.got.Lines, 1)
	assert.EqualValues(t, 16000, gw.got.Lines[0].UnitAmount)
	assert.Contains(t, gw.got.Lines[0].Name, "PEDIDO20")

	got := reload(t, gdb, o.ID)
	require.NotNil(t, got.PaymentIntentID)
	assert.Equal(t, "cs_2", *got.PaymentIntentID)
}

func TestBeginPayment_Rejections(t *testing.T) {
	gw := &fakeGateway{session: &payment.Session{ID: "cs", URL: "https://pay.example"}}
	gdb, svc := newPayments(t, gw)
	ctx := context.Background()
	u := shopper()
	o := placeOrder(t, gdb, u, "10.00")

	_, err := svc.BeginPayment(ctx, shopper(), o.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.BeginPayment(ctx, u, uuid.New())
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	require.NoError(t, gdb.Model(&models.Order{}).Where("id = ?", o.ID).Update("status", "paid").Error)
	_, err = svc.BeginPayment(ctx, u, o.ID)
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyPaid)

	require.NoError(t, gdb.Model(&models.Order{}).Where("id = ?", o.ID).Update("status", "cancelled").Error)
	_, err = svc.BeginPayment(ctx, u, o.ID)
	assert.ErrorIs(t, err, domain.ErrOrderCancelled)
}

func TestBeginPayment_FullyDiscountedOrder(t *testing.T) {
	gw := &fakeGateway{session: &payment.Session{ID: "cs_free", URL: "https://pay.example/free"}}
	gdb, svc := newPayments(t, gw)
	u := shopper()

	p := repotest.Product(t, gdb, "sticker", "12.00", 5)
	c := repotest.Coupon(t, gdb, "FREE100", "100", nil, true)
	cart := repotest.Cart(t, gdb, u.ID, map[*models.Product]int{p: 1})
	require.NoError(t, gdb.Model(&models.Cart{}).Where("id = ?", cart.ID).Update("coupon_id", c.ID).Error)
	o, err := (&CheckoutService{Repo: repo.New(gdb)}).CreateOrderFromCart(context.Background(), u)
	require.NoError(t, err)
	require.True(t, o.TotalPrice.IsZero())

	_, err = svc.BeginPayment(context.Background(), u, o.ID)
	assert.ErrorIs(t, err, domain.ErrNothingToCharge)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Nil(t, gw.got)
	assert.Nil(t, reload(t, gdb, o.ID).PaymentIntentID)
}

func TestBeginPayment_ProviderFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("provider error passes through", func(t *testing.T) {
		gw := &fakeGateway{err: domain.PaymentError(http.StatusBadRequest, "bad currency", nil)}
		gdb, svc := newPayments(t, gw)
		u := shopper()
		o := placeOrder(t, gdb, u, "10.00")

		_, err := svc.BeginPayment(ctx, u, o.ID)
		var pe *domain.ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, http.StatusBadRequest, pe.StatusCode)
		assert.Nil(t, reload(t, gdb, o.ID).PaymentIntentID)
	})

	t.Run("timeout is unavailable", func(t *testing.T) {
		gw := &fakeGateway{block: true}
		gdb, svc := newPayments(t, gw)
		svc.Timeout = 20 * time.Millisecond
		u := shopper()
		o := placeOrder(t, gdb, u, "10.00")

		_, err := svc.BeginPayment(ctx, u, o.ID)
		assert.ErrorIs(t, err, domain.ErrUnavailable)
	})

	t.Run("persist failure still returns url", func(t *testing.T) {
		gw := &fakeGateway{session: &payment.Session{ID: "cs_dup", URL: "https://pay.example/dup", PaymentIntentID: "pi_dup"}}
		gdb, svc := newPayments(t, gw)
		u := shopper()
		holder := placeOrder(t, gdb, shopper(), "5.00")
		require.NoError(t, gdb.Model(&models.Order{}).Where("id = ?", holder.ID).Update("payment_intent_id", "pi_dup").Error)
		o := placeOrder(t, gdb, u, "10.00")

		url, err := svc.BeginPayment(ctx, u, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://pay.example/dup", url)
		assert.Nil(t, reload(t, gdb, o.ID).PaymentIntentID)
	})
}

func paidEvent(orderID string) *payment.Event {
	return &payment.Event{
		ID:              "evt_1",
		Type:            payment.EventCheckoutCompleted,
		OrderID:         orderID,
		PaymentStatus:   payment.PaymentStatusPaid,
		PaymentIntentID: "pi_hook",
	}
}

func TestHandleEvent_MarksPaidOnce(t *testing.T) {
	gw := &fakeGateway{}
	gdb, svc := newPayments(t, gw)
	ctx := context.Background()
	o := placeOrder(t, gdb, shopper(), "10.00")
	gw.event = paidEvent(o.ID.String())

	require.NoError(t, svc.HandleEvent(ctx, []byte("{}"), "sig"))
	require.NoError(t, svc.HandleEvent(ctx, []byte("{}"), "sig"))

	got := reload(t, gdb, o.ID)
	assert.Equal(t, string(domain.StatusPaid), got.Status)
	require.NotNil(t, got.PaymentIntentID)
	assert.Equal(t, "pi_hook", *got.PaymentIntentID)

	var paid int64
	require.NoError(t, gdb.Model(&models.OutboxEvent{}).Where("type = ?", EventOrderPaid).Count(&paid).Error)
	assert.EqualValues(t, 1, paid)
}

func TestHandleEvent_AcknowledgedNoOps(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		event func(orderID string) *payment.Event
	}{
		{"other type", func(id string) *payment.Event {
			ev := paidEvent(id)
			ev.Type = "payment_intent.created"
			return ev
		}},
		{"not paid", func(id string) *payment.Event {
			ev := paidEvent(id)
			ev.PaymentStatus = "unpaid"
			return ev
		}},
		{"missing order id", func(string) *payment.Event { return paidEvent("") }},
		{"bad order id", func(string) *payment.Event { return paidEvent("not-a-uuid") }},
		{"unknown order", func(string) *payment.Event { return paidEvent(uuid.NewString()) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gw := &fakeGateway{}
			gdb, svc := newPayments(t, gw)
			o := placeOrder(t, gdb, shopper(), "10.00")
			gw.event = tc.event(o.ID.String())

			require.NoError(t, svc.HandleEvent(ctx, []byte("{}"), "sig"))
			assert.Equal(t, string(domain.StatusPendingPayment), reload(t, gdb, o.ID).Status)
		})
	}
}

func TestHandleEvent_CancelledOrderStaysCancelled(t *testing.T) {
	gw := &fakeGateway{}
	gdb, svc := newPayments(t, gw)
	o := placeOrder(t, gdb, shopper(), "10.00")
	require.NoError(t, gdb.Model(&models.Order{}).Where("id = ?", o.ID).Update("status", "cancelled").Error)
	gw.event = paidEvent(o.ID.String())

	require.NoError(t, svc.HandleEvent(context.Background(), []byte("{}"), "sig"))
	assert.Equal(t, string(domain.StatusCancelled), reload(t, gdb, o.ID).Status)
}

func TestHandleEvent_BadSignature(t *testing.T) {
	gw := &fakeGateway{parseErr: domain.ErrInvalidSignature}
	_, svc := newPayments(t, gw)

	err := svc.HandleEvent(context.Background(), []byte("{}"), "forged")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestHandleEvent_StorageFailureIsRetryable(t *testing.T) {
	gw := &fakeGateway{}
	gdb, svc := newPayments(t, gw)
	o := placeOrder(t, gdb, shopper(), "10.00")
	gw.event = paidEvent(o.ID.String())

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = svc.HandleEvent(context.Background(), []byte("{}"), "sig")
	assert.ErrorIs(t, err, domain.ErrRetryable)
}
