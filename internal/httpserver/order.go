package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type OrderHTTP struct {
	Svc      *service.OrderService
	Checkout *service.CheckoutService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	p, err := principal(c)
	if err != nil {
		return err
	}
	o, err := h.Checkout.CreateOrderFromCart(ctx, p)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", o.ID, "total", o.TotalPrice.StringFixed(2))
	return c.JSON(http.StatusCreated, transport.NewOrderView(o))
}

func (h *OrderHTTP) ListMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_mine")

	p, err := principal(c)
	if err != nil {
		return err
	}
	orders, err := h.Svc.ListMine(ctx, p)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewOrderViews(orders))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	o, err := h.Svc.Get(ctx, p, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewOrderView(o))
}

func (h *OrderHTTP) ListAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	page, size := pageParams(c)
	res, err := h.Svc.ListAll(ctx, page, size)
	if err != nil {
		return fail(l, "list_all_orders_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", o.ID, "status", o.Status)
	return c.JSON(http.StatusOK, transport.NewOrderView(o))
}
