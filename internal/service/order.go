package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type OrderService struct {
	Repo *repo.GormRepo
}

func (s *OrderService) ListMine(ctx context.Context, p domain.Principal) ([]models.Order, error) {
	return s.Repo.ListUserOrders(ctx, p.ID)
}

// Get returns the order to its owner or to an admin.
func (s *OrderService) Get(ctx context.Context, p domain.Principal, id uuid.UUID) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrOrderNotFound)
	}
	if !p.IsAdmin() && o.UserID != p.ID {
		return nil, fmt.Errorf("%w: order belongs to another user", domain.ErrForbidden)
	}
	return o, nil
}

func (s *OrderService) ListAll(ctx context.Context, page, size int) (transport.Page[transport.OrderView], error) {
	page, offset, limit := util.Calculate(page, size)
	total, orders, err := s.Repo.ListOrders(ctx, offset, limit)
	if err != nil {
		return transport.Page[transport.OrderView]{}, err
	}
	return transport.NewPage(transport.NewOrderViews(orders), page, offset, limit, total), nil
}

// UpdateStatus applies an admin-driven transition. Unknown literals are a
// validation error, disallowed transitions a conflict.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	err = s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		o, err := tx.LockOrder(ctx, id)
		if err != nil {
			return notFoundAs(err, domain.ErrOrderNotFound)
		}
		prev := domain.OrderStatus(o.Status)
		if err := domain.CheckTransition(prev, next); err != nil {
			return err
		}
		ok, err := tx.TransitionStatus(ctx, id, prev, next)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: order status changed concurrently", domain.ErrConflict)
		}
		ev := newOrderEvent(EventOrderStatusChanged, o, next, prev)
		return tx.AddOutbox(ctx, TopicOrderEvents, o.ID.String(), EventOrderStatusChanged, ev)
	})
	if err != nil {
		return nil, err
	}
	return s.Repo.GetOrder(ctx, id)
}
