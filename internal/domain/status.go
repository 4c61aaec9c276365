package domain

import "fmt"

type OrderStatus string

const (
	StatusPendingPayment OrderStatus = "pending_payment"
	StatusPaid           OrderStatus = "paid"
	StatusShipped        OrderStatus = "shipped"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPendingPayment: {StatusPaid, StatusCancelled},
	StatusPaid:           {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusDelivered, StatusCancelled},
	StatusDelivered:      nil,
	StatusCancelled:      nil,
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(s)
	if _, ok := transitions[st]; !ok {
		return "", fmt.Errorf("%w: unknown order status %q", ErrValidation, s)
	}
	return st, nil
}

func (s OrderStatus) Terminal() bool { return len(transitions[s]) == 0 }

// PaidOrLater is true once money has been captured for the order.
func (s OrderStatus) PaidOrLater() bool {
	return s == StatusPaid || s == StatusShipped || s == StatusDelivered
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func CheckTransition(from, to OrderStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: cannot move order from %s to %s", ErrConflict, from, to)
	}
	return nil
}
