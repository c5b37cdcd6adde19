package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/taller/photovault/common/config"
)

// RequireAdmin gates destructive routes behind the admin session cookie.
// Deliberately a boolean check, nothing more: matching cookie value passes.
func RequireAdmin(cfg config.AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cfg.AdminCookieName)
			if err != nil || cookie.Value != cfg.AdminCookieValue {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": "admin session required",
				})
			}
			return next(c)
		}
	}
}
