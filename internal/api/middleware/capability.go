package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kalakrut/portal/internal/core/domain"
)

// RequireCapability admits requests whose role holds at least one of caps.
// It must run after Auth.
func RequireCapability(caps ...domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if !domain.EvaluateCapabilities(domain.Role(role)).HasAny(caps...) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
