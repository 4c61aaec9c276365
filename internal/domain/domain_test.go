package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, st)

	_, err = ParseOrderStatus("lost")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCheckTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPendingPayment, StatusPaid, true},
		{StatusPendingPayment, StatusCancelled, true},
		{StatusPendingPayment, StatusShipped, false},
		{StatusPaid, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPendingPayment, false},
		{StatusPaid, StatusPaid, false},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s->%s", tc.from, tc.to), func(t *testing.T) {
			err := CheckTransition(tc.from, tc.to)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrConflict))
		})
	}
	assert.True(t, StatusDelivered.Terminal())
	assert.False(t, StatusPaid.Terminal())
}

func TestTypedErrorsUnwrapToClasses(t *testing.T) {
	id := uuid.New()
	var gone error = &ProductGoneError{ProductID: id}
	var stock error = &InsufficientStockError{ProductID: id, Name: "Mug", Requested: 5, Available: 1}

	assert.True(t, errors.Is(gone, ErrConflict))
	assert.True(t, errors.Is(fmt.Errorf("checkout: %w", stock), ErrConflict))

	var ise *InsufficientStockError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", stock), &ise))
	assert.Equal(t, 1, ise.Available)

	assert.True(t, errors.Is(ShippingError(400, "bad cep", nil), ErrValidation))
	cause := errors.New("dial tcp: timeout")
	netErr := PaymentError(503, "provider unreachable", cause)
	assert.True(t, errors.Is(netErr, ErrUnavailable))
	assert.True(t, errors.Is(netErr, cause))
}

func TestNamedErrorsCarryClass(t *testing.T) {
	assert.True(t, errors.Is(ErrEmptyCart, ErrValidation))
	assert.True(t, errors.Is(ErrCouponNoLongerValid, ErrConflict))
	assert.True(t, errors.Is(ErrOrderAlreadyPaid, ErrConflict))
	assert.True(t, errors.Is(ErrInvalidSignature, ErrValidation))
	assert.True(t, errors.Is(ErrOrderNotFound, ErrNotFound))
}

func TestPrincipal(t *testing.T) {
	assert.False(t, Principal{Role: RoleAdmin}.CartEligible())
	assert.True(t, Principal{Role: RoleUser}.CartEligible())
}

func TestDiscount(t *testing.T) {
	d := Discount(decimal.NewFromInt(200), decimal.NewFromInt(20))
	assert.Equal(t, "40.00", d.StringFixed(2))

	d = Discount(decimal.RequireFromString("33.33"), decimal.RequireFromString("15"))
	assert.Equal(t, "5.00", d.StringFixed(2))

	assert.EqualValues(t, 1999, MinorUnits(decimal.RequireFromString("19.99")))
	assert.EqualValues(t, 10050, MinorUnits(decimal.RequireFromString("100.5")))
}
