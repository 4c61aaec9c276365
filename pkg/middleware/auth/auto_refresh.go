package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/authclient"
	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"

	RoleAdmin = "admin"
)

type AutoRefreshMiddleware struct {
	JWTSecret  []byte
	AuthClient *authclient.Client
}

func NewAutoRefreshMiddleware(secret []byte, authClient *authclient.Client) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{
		JWTSecret:  secret,
		AuthClient: authClient,
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

// RequireShopper admits authenticated non-admin users, the only ones owning a cart.
func (m *AutoRefreshMiddleware) RequireShopper(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role == RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admins have no cart")
		}
		return nil
	})
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if raw := bearerToken(c); raw != "" {
			claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
			return m.admit(c, next, validator, claims)
		}

		accessCookie, err := c.Cookie(jwthelp.AccessCookie)
		if err != nil || accessCookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(accessCookie.Value, m.JWTSecret)
		if err == nil {
			return m.admit(c, next, validator, claims)
		}

		if !errors.Is(err, jwt.ErrTokenExpired) {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		refreshCookie, rErr := c.Cookie(jwthelp.RefreshCookie)
		if rErr != nil || refreshCookie.Value == "" {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
		}

		refreshResp, refErr := m.AuthClient.RefreshTokens(c.Request().Context(), refreshCookie.Value, accessCookie.Value)
		if refErr != nil {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh failed")
		}

		newClaims, pErr := tokens.AccessClaimsFromToken(refreshResp.AccessToken, m.JWTSecret)
		if pErr != nil {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
		}

		c.SetCookie(jwthelp.CreateCookie(jwthelp.AccessCookie, refreshResp.AccessToken, "/", time.Unix(refreshResp.AccessExp, 0)))
		c.SetCookie(jwthelp.CreateCookie(jwthelp.RefreshCookie, refreshResp.RefreshToken, "/", time.Unix(refreshResp.RefreshExp, 0)))

		return m.admit(c, next, validator, newClaims)
	}
}

func (m *AutoRefreshMiddleware) admit(c echo.Context, next echo.HandlerFunc, validator ValidatorFunc, claims *tokens.AccessClaims) error {
	if validator != nil {
		if err := validator(claims); err != nil {
			return err
		}
	}
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)
	return next(c)
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.AccessCookie, "/"))
	c.SetCookie(jwthelp.DeleteCookie(jwthelp.RefreshCookie, "/"))
}
