package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/domain"
)

// fail logs err under event and turns it into the HTTP error for its class.
func fail(l *slog.Logger, event string, err error) error {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", body, "error", err)
	}
	return echo.NewHTTPError(status, body)
}

func classify(err error) (int, any) {
	var (
		pe    *domain.ProviderError
		short *domain.InsufficientStockError
		gone  *domain.ProductGoneError
	)
	switch {
	case errors.As(err, &pe):
		status := pe.StatusCode
		if status != http.StatusBadRequest {
			status = http.StatusServiceUnavailable
		}
		return status, pe.Message
	case errors.As(err, &short):
		return http.StatusConflict, echo.Map{
			"message":    "insufficient stock",
			"product_id": short.ProductID,
			"name":       short.Name,
			"requested":  short.Requested,
			"available":  short.Available,
		}
	case errors.As(err, &gone):
		return http.StatusConflict, echo.Map{
			"message":    "product no longer exists",
			"product_id": gone.ProductID,
		}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, reason(err, domain.ErrValidation)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, reason(err, domain.ErrNotFound)
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, reason(err, domain.ErrConflict)
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, reason(err, domain.ErrForbidden)
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	case errors.Is(err, domain.ErrRetryable):
		return http.StatusInternalServerError, "temporary failure, retry"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// reason strips the class prefix ("conflict: ") from a domain error message.
func reason(err, class error) string {
	msg := err.Error()
	if s, ok := strings.CutPrefix(msg, class.Error()+": "); ok {
		return s
	}
	return msg
}
