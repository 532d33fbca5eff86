package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// ClientIDHeader carries an opaque id the storefront generates once per
// browser.  It is not authentication.
const ClientIDHeader = "X-Client-ID"

// ClientID returns the trimmed client id header, or "" when absent or
// longer than 128 bytes.
func ClientID(c echo.Context) string {
	id := strings.TrimSpace(c.Request().Header.Get(ClientIDHeader))
	if len(id) > 128 {
		return ""
	}
	return id
}

// userID returns the authenticated actor id set by JWTAuth, falling back
// to the client id and then "guest".
func userID(c echo.Context) string {
	if s, ok := c.Get("user_id").(string); ok && s != "" {
		return s
	}
	if id := ClientID(c); id != "" {
		return "client:" + id
	}
	return "guest"
}
