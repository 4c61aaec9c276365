package httpserver

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const maxWebhookBody = 64 << 10

type PaymentHTTP struct {
	Svc *service.PaymentService
}

func (h *PaymentHTTP) BeginPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.begin")

	p, err := principal(c)
	if err != nil {
		return err
	}
	orderID, err := uuidParam(c, "order_id")
	if err != nil {
		return err
	}

	url, err := h.Svc.BeginPayment(ctx, p, orderID)
	if err != nil {
		return fail(l, "begin_payment_error", err)
	}
	return c.JSON(http.StatusOK, transport.CheckoutSessionResponse{CheckoutURL: url})
}

// Webhook must see the raw body: the signature covers the exact bytes sent.
func (h *PaymentHTTP) Webhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.webhook")

	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody))
	if err != nil {
		l.Warn("webhook_error", "status", 400, "reason", "unreadable body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	if err := h.Svc.HandleEvent(ctx, body, c.Request().Header.Get("Stripe-Signature")); err != nil {
		return fail(l, "webhook_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
