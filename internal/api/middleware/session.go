package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/laporpak/report-service/internal/infrastructure/session"
)

// Session binds the raw session token of the request to its context.
// The cookie wins over an Authorization: Bearer header. The token is not
// verified here; an absent or bad token simply resolves to no identity later.
func Session(cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromRequest(c, cookieName)
			if token != "" {
				req := c.Request()
				c.SetRequest(req.WithContext(session.ContextWithToken(req.Context(), token)))
			}
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
