package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CouponHTTP struct {
	Svc *service.CouponService
}

func (h *CouponHTTP) ListCoupons(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.list")

	page, size := pageParams(c)
	res, err := h.Svc.List(ctx, page, size)
	if err != nil {
		return fail(l, "list_coupons_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CouponHTTP) CreateCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.create")

	var req transport.CreateCouponRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_coupon_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cp, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "create_coupon_error", err)
	}

	l.Info("create_coupon_success", "coupon_id", cp.ID, "code", cp.Code)
	return c.JSON(http.StatusCreated, cp)
}

func (h *CouponHTTP) PatchCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.patch")

	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req transport.PatchCouponRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("patch_coupon_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cp, err := h.Svc.Patch(ctx, id, req)
	if err != nil {
		return fail(l, "patch_coupon_error", err)
	}
	return c.JSON(http.StatusOK, cp)
}

func (h *CouponHTTP) DeleteCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.delete")

	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_coupon_error", err)
	}

	l.Info("delete_coupon_success", "coupon_id", id)
	return c.NoContent(http.StatusNoContent)
}
