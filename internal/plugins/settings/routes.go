package settings

import (
	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// RegisterRoutes wires the site configuration endpoints.
func RegisterRoutes(e *echo.Echo, handler *Handler, authService auth.AuthService) {
	e.GET("/api/config", handler.GetConfig)

	admin := e.Group("/api/admin/config", auth.RequireAuth(authService), auth.RequireAdmin())
	admin.PUT("", handler.UpdateConfig)
}
