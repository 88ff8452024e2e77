package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/laporpak/report-service/internal/core/domain"
	"github.com/laporpak/report-service/internal/core/ports"
)

// RBAC rejects requests whose resolved identity does not hold one of the
// allowed roles. With no roles given any authenticated caller passes.
// Services gate again on their own; this only stops a request early.
func RBAC(identities ports.IdentityProvider, allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, err := identities.CurrentIdentity(c.Request().Context())
			if err != nil {
				return err
			}
			if ident == nil {
				return domain.ErrUnauthenticated
			}
			if len(allowed) > 0 {
				if _, ok := allowed[ident.Role]; !ok {
					return domain.ErrForbidden
				}
			}
			return next(c)
		}
	}
}
