package media

import (
	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// RegisterRoutes wires the media endpoints. Uploads are admin-only; the
// files themselves are served statically by the app under /media.
func RegisterRoutes(e *echo.Echo, handler *Handler, authService auth.AuthService) {
	admin := e.Group("/api/admin/media", auth.RequireAuth(authService), auth.RequireAdmin())
	admin.POST("", handler.Upload)
	admin.GET("", handler.List)
	admin.DELETE("/:id", handler.Delete)
}
