package settings

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// Maintenance returns middleware that answers 503 while maintenance mode
// is on. Auth and admin routes stay reachable so staff can log in and turn
// the mode back off.
func Maintenance(service Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if strings.HasPrefix(path, "/api/auth") || strings.HasPrefix(path, "/api/admin") ||
				path == "/healthz" {
				return next(c)
			}
			if service.MaintenanceEnabled(c.Request().Context()) {
				return apperror.NewServiceUnavailable("the site is under maintenance, please come back soon")
			}
			return next(c)
		}
	}
}
