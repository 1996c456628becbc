package middleware

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/unitynodes/unity-nodes-api/internal/core/domain"
)

// RBAC admits operators whose token role is one of roles. Auth must run first.
func RBAC(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(string)
			if !ok || role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing operator identity")
			}
			if !slices.Contains(roles, role) {
				return fmt.Errorf("%w: role %s on %s %s", domain.ErrForbidden, role, c.Request().Method, c.Path())
			}
			return next(c)
		}
	}
}
