package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type ReviewHTTP struct {
	Svc *service.ReviewService
}

func (h *ReviewHTTP) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.create")

	p, err := principal(c)
	if err != nil {
		return err
	}
	productID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req transport.CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_review_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	rv, err := h.Svc.Create(ctx, p, productID, req)
	if err != nil {
		return fail(l, "create_review_error", err)
	}
	return c.JSON(http.StatusCreated, rv)
}

func (h *ReviewHTTP) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.list")

	productID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	page, size := pageParams(c)
	res, err := h.Svc.List(ctx, productID, page, size)
	if err != nil {
		return fail(l, "list_reviews_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *ReviewHTTP) DeleteReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "review.delete")

	p, err := principal(c)
	if err != nil {
		return err
	}
	productID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	reviewID, err := uuidParam(c, "review_id")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, p, productID, reviewID); err != nil {
		return fail(l, "delete_review_error", err)
	}

	l.Info("delete_review_success", "review_id", reviewID, "by", p.ID)
	return c.NoContent(http.StatusNoContent)
}
