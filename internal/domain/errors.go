package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error classes. Every error the services return wraps exactly one of these.
var (
	ErrValidation  = errors.New("validation")  // 400
	ErrNotFound    = errors.New("not found")   // 404
	ErrConflict    = errors.New("conflict")    // 409
	ErrForbidden   = errors.New("forbidden")   // 403
	ErrUnavailable = errors.New("unavailable") // 503
	ErrRetryable   = errors.New("retryable")   // 500, caller must redeliver
)

var (
	ErrEmptyCart           = fmt.Errorf("%w: cart is empty", ErrValidation)
	ErrCouponNoLongerValid = fmt.Errorf("%w: coupon is no longer valid", ErrConflict)
	ErrCouponInvalid       = fmt.Errorf("%w: coupon invalid or expired", ErrNotFound)
	ErrOrderNotFound       = fmt.Errorf("%w: order not found", ErrNotFound)
	ErrProductNotFound     = fmt.Errorf("%w: product not found", ErrNotFound)
	ErrCouponNotFound      = fmt.Errorf("%w: coupon not found", ErrNotFound)
	ErrCategoryNotFound    = fmt.Errorf("%w: category not found", ErrNotFound)
	ErrReviewNotFound      = fmt.Errorf("%w: review not found", ErrNotFound)
	ErrNotInCart           = fmt.Errorf("%w: product not in cart", ErrNotFound)
	ErrOrderAlreadyPaid    = fmt.Errorf("%w: order already paid", ErrConflict)
	ErrOrderCancelled      = fmt.Errorf("%w: order is cancelled", ErrConflict)
	ErrNothingToCharge     = fmt.Errorf("%w: order total is zero, nothing to charge", ErrConflict)
	ErrInvalidSignature    = fmt.Errorf("%w: invalid signature", ErrValidation)
	ErrMalformedPayload    = fmt.Errorf("%w: malformed payload", ErrValidation)
	ErrNoCart              = fmt.Errorf("%w: admins have no cart", ErrForbidden)
)

type ProductGoneError struct {
	ProductID uuid.UUID
}

func (e *ProductGoneError) Error() string {
	return fmt.Sprintf("product %s no longer exists", e.ProductID)
}

func (e *ProductGoneError) Unwrap() error { return ErrConflict }

type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.Name, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrConflict }

// ProviderError is a failure reported by an external provider, carrying the
// status the HTTP layer should answer with (400 or 503).
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() []error {
	class := ErrUnavailable
	if e.StatusCode == 400 {
		class = ErrValidation
	}
	if e.Err != nil {
		return []error{class, e.Err}
	}
	return []error{class}
}

func ShippingError(status int, msg string, cause error) error {
	return &ProviderError{Provider: "shipping", StatusCode: status, Message: msg, Err: cause}
}

func PaymentError(status int, msg string, cause error) error {
	return &ProviderError{Provider: "payment", StatusCode: status, Message: msg, Err: cause}
}
