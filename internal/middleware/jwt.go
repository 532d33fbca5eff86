package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/atelier-booking/internal/auth"
)

// JWTAuth validates a Bearer access token.  The token's subject and role
// are stored under "user_id" and "role" for c.Get, and the subject is
// also put into the request context as the actor the services check.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			claims, err := auth.ParseAccessToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set("user_id", claims.Subject)
			c.Set("role", claims.Role)
			req := c.Request()
			c.SetRequest(req.WithContext(auth.WithActor(req.Context(), claims.Subject)))
			return next(c)
		}
	}
}
