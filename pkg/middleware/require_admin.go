package middleware

import (
	"github.com/labstack/echo/v4"

	apierrors "github.com/easyprospect/api/pkg/api/errors"
	"github.com/easyprospect/api/pkg/domain"
	"github.com/easyprospect/api/pkg/models"
)

// RequireAdmin rejects requests whose token does not carry the admin role.
// Apply it after the JWT middleware.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get("user_id").(int); !ok {
				return apierrors.Respond(c, domain.NewUnauthorizedError())
			}
			if !IsAdmin(c) {
				return apierrors.Respond(c, domain.NewForbiddenError("admin access required"))
			}
			return next(c)
		}
	}
}

// IsAdmin reports whether the request was authenticated as an admin
func IsAdmin(c echo.Context) bool {
	role, _ := c.Get("user_role").(string)
	return role == models.RoleAdmin
}
