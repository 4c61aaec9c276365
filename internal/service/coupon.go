package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

const maxCouponCode = 20

type CouponService struct {
	Repo *repo.GormRepo
	Now  Clock
}

func normalizeCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" || len(code) > maxCouponCode {
		return "", validation("coupon code must be 1..%d characters", maxCouponCode)
	}
	return code, nil
}

func checkPercent(p decimal.Decimal) error {
	if !p.IsPositive() || p.GreaterThan(decimal.NewFromInt(100)) {
		return validation("discount_percent must be in (0, 100]")
	}
	return nil
}

// LookupValid returns the coupon only if it is active and not expired at now.
func (s *CouponService) LookupValid(ctx context.Context, code string, now time.Time) (*models.Coupon, error) {
	c, err := s.Repo.FindCouponByCode(ctx, code)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrCouponInvalid)
	}
	if !c.ValidAt(now) {
		return nil, domain.ErrCouponInvalid
	}
	return c, nil
}

func (s *CouponService) Create(ctx context.Context, req transport.CreateCouponRequest) (*models.Coupon, error) {
	code, err := normalizeCode(req.Code)
	if err != nil {
		return nil, err
	}
	if err := checkPercent(req.DiscountPercent); err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	c := &models.Coupon{
		Code:            code,
		DiscountPercent: req.DiscountPercent,
		ExpiresAt:       utcPtr(req.ExpiresAt),
		IsActive:        active,
	}
	if err := s.Repo.CreateCoupon(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CouponService) List(ctx context.Context, page, size int) (transport.Page[models.Coupon], error) {
	page, offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListCoupons(ctx, offset, limit)
	if err != nil {
		return transport.Page[models.Coupon]{}, err
	}
	return transport.NewPage(items, page, offset, limit, total), nil
}

func (s *CouponService) Patch(ctx context.Context, id uuid.UUID, req transport.PatchCouponRequest) (*models.Coupon, error) {
	c, err := s.Repo.UpdateCoupon(ctx, id, func(c *models.Coupon) error {
		if req.Code != nil {
			code, err := normalizeCode(*req.Code)
			if err != nil {
				return err
			}
			c.Code = code
		}
		if req.DiscountPercent != nil {
			if err := checkPercent(*req.DiscountPercent); err != nil {
				return err
			}
			c.DiscountPercent = *req.DiscountPercent
		}
		switch {
		case req.ClearExpiry:
			c.ExpiresAt = nil
		case req.ExpiresAt != nil:
			c.ExpiresAt = utcPtr(req.ExpiresAt)
		}
		if req.IsActive != nil {
			c.IsActive = *req.IsActive
		}
		return nil
	})
	if err != nil {
		return nil, notFoundAs(err, domain.ErrCouponNotFound)
	}
	return c, nil
}

func (s *CouponService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFoundAs(s.Repo.DeleteCoupon(ctx, id), domain.ErrCouponNotFound)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
