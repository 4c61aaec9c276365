package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/util"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

// principal reads the identity the auth middleware stored on the context.
func principal(c echo.Context) (domain.Principal, error) {
	s, _ := c.Get(middleware.CtxUserID).(string)
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	role, _ := c.Get(middleware.CtxRole).(string)
	return domain.Principal{ID: id, Role: role}, nil
}

func uuidParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func pageParams(c echo.Context) (page, size int) {
	page = util.ParseIntDefault(c.QueryParam("page"), 1)
	size = util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	return page, size
}
