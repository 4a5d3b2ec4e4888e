package locations

import (
	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// RegisterRoutes wires the location endpoints: public list, admin CRUD.
func RegisterRoutes(e *echo.Echo, handler *Handler, authService auth.AuthService) {
	e.GET("/api/sedes", handler.List)

	admin := e.Group("/api/admin/sedes", auth.RequireAuth(authService), auth.RequireAdmin())
	admin.POST("", handler.Create)
	admin.PUT("/:id", handler.Update)
	admin.DELETE("/:id", handler.Delete)
}
