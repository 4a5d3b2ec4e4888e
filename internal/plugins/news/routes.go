package news

import (
	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// RegisterRoutes wires the news endpoints: public feed, admin CRUD.
func RegisterRoutes(e *echo.Echo, handler *Handler, authService auth.AuthService) {
	e.GET("/api/noticias", handler.ListPublished)
	e.GET("/api/noticias/:slug", handler.GetBySlug)

	admin := e.Group("/api/admin/noticias", auth.RequireAuth(authService), auth.RequireAdmin())
	admin.GET("", handler.ListAll)
	admin.POST("", handler.Create)
	admin.PUT("/:id", handler.Update)
	admin.DELETE("/:id", handler.Delete)
}
