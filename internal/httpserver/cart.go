package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	p, err := principal(c)
	if err != nil {
		return err
	}
	v, err := h.Svc.View(ctx, p)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	p, err := principal(c)
	if err != nil {
		return err
	}
	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_item_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	v, err := h.Svc.AddItem(ctx, p, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_item_error", err)
	}

	l.Info("add_item_success", "product_id", req.ProductID, "quantity", req.Quantity)
	return c.JSON(http.StatusOK, v)
}

func (h *CartHTTP) SetQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.set_quantity")

	p, err := principal(c)
	if err != nil {
		return err
	}
	productID, err := uuidParam(c, "product_id")
	if err != nil {
		return err
	}
	var req transport.SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("set_quantity_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	v, err := h.Svc.SetQuantity(ctx, p, productID, req.Quantity)
	if err != nil {
		return fail(l, "set_quantity_error", err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	p, err := principal(c)
	if err != nil {
		return err
	}
	productID, err := uuidParam(c, "product_id")
	if err != nil {
		return err
	}

	v, err := h.Svc.RemoveItem(ctx, p, productID)
	if err != nil {
		return fail(l, "remove_item_error", err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	p, err := principal(c)
	if err != nil {
		return err
	}
	v, err := h.Svc.Clear(ctx, p)
	if err != nil {
		return fail(l, "clear_cart_error", err)
	}

	l.Info("clear_cart_success")
	return c.JSON(http.StatusOK, v)
}

func (h *CartHTTP) ApplyCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.apply_coupon")

	p, err := principal(c)
	if err != nil {
		return err
	}
	var req transport.ApplyCouponRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("apply_coupon_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	v, err := h.Svc.ApplyCoupon(ctx, p, req.Code)
	if err != nil {
		return fail(l, "apply_coupon_error", err)
	}

	l.Info("apply_coupon_success", "code", req.Code)
	return c.JSON(http.StatusOK, v)
}

func (h *CartHTTP) RemoveCoupon(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_coupon")

	p, err := principal(c)
	if err != nil {
		return err
	}
	v, err := h.Svc.RemoveCoupon(ctx, p)
	if err != nil {
		return fail(l, "remove_coupon_error", err)
	}
	return c.JSON(http.StatusOK, v)
}
