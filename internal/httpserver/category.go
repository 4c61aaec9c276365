package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CategoryHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoryHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.list")

	page, size := pageParams(c)
	res, err := h.Svc.List(ctx, page, size)
	if err != nil {
		return fail(l, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CategoryHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")

	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	cat, err := h.Svc.Get(ctx, id)
	if err != nil {
		return fail(l, "get_category_error", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_category_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cat, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "create_category_error", err)
	}

	l.Info("create_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHTTP) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_category_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cat, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(l, "update_category_error", err)
	}

	l.Info("update_category_success", "category_id", cat.ID)
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "delete_category_error", err)
	}

	l.Info("delete_category_success", "category_id", id)
	return c.NoContent(http.StatusNoContent)
}
