// Package middleware holds the Echo middleware of the booking API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-ledger/internal/service"
	"github.com/iliyamo/booking-ledger/internal/utils"
)

// PrincipalKey is the echo.Context key under which JWTAuth stores the
// authenticated principal.
const PrincipalKey = "principal"

// JWTAuth validates a Bearer access token and attests its subject as the
// principal of the request.  The subject is stored both in the Echo context
// and in the request context, where service.ContextAuthorizer reads it.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			sub, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(PrincipalKey, sub)
			req := c.Request()
			c.SetRequest(req.WithContext(service.WithPrincipal(req.Context(), sub)))
			return next(c)
		}
	}
}

// Principal returns the principal attested by JWTAuth, or "" for
// anonymous requests.
func Principal(c echo.Context) string {
	if s, ok := c.Get(PrincipalKey).(string); ok {
		return s
	}
	return ""
}
