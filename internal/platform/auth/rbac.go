package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole returns middleware that checks if the user has at least one of the specified roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRoles := RolesFromContext(c.Request().Context())
			for _, required := range roles {
				for _, has := range userRoles {
					if has == required || has == "admin" {
						return next(c)
					}
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}

// EffectiveUserID resolves the user an operation acts for. The token subject
// is authoritative: a caller-supplied user_id must match it, an empty one
// falls back to it. Admins may act for any user.
func EffectiveUserID(c echo.Context, requested string) (string, error) {
	ctx := c.Request().Context()
	subject := UserIDFromContext(ctx)
	if subject == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "no authenticated user")
	}
	if requested == "" || requested == subject {
		return subject, nil
	}
	for _, role := range RolesFromContext(ctx) {
		if role == "admin" {
			return requested, nil
		}
	}
	return "", echo.NewHTTPError(http.StatusForbidden, "user_id does not match authenticated user")
}
