package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ShippingHTTP struct {
	Svc *service.ShippingService
}

func (h *ShippingHTTP) Calculate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shipping.calculate")

	p, err := principal(c)
	if err != nil {
		return err
	}
	var req transport.ShippingRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("shipping_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	opts, err := h.Svc.Quote(ctx, p, req.PostalCode)
	if err != nil {
		return fail(l, "shipping_error", err)
	}

	out := make([]transport.ShippingOptionView, 0, len(opts))
	for _, o := range opts {
		out = append(out, transport.ShippingOptionView{
			Name:         o.Name,
			Price:        o.Price.StringFixed(2),
			DeliveryTime: o.DeliveryTime,
			Carrier:      o.Carrier,
		})
	}
	return c.JSON(http.StatusOK, out)
}
