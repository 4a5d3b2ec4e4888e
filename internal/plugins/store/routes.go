package store

import (
	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// RegisterRoutes wires the storefront endpoints: public catalog and
// checkout, admin product and order management.
func RegisterRoutes(e *echo.Echo, handler *Handler, authService auth.AuthService) {
	e.GET("/api/tienda/productos", handler.Catalog)
	e.POST("/api/tienda/pedidos", handler.PlaceOrder)

	admin := e.Group("/api/admin/tienda", auth.RequireAuth(authService), auth.RequireAdmin())
	admin.GET("/productos", handler.ListProducts)
	admin.POST("/productos", handler.CreateProduct)
	admin.PUT("/productos/:id", handler.UpdateProduct)
	admin.DELETE("/productos/:id", handler.DeleteProduct)
	admin.GET("/pedidos", handler.ListOrders)
	admin.GET("/pedidos/:id", handler.GetOrder)
	admin.PUT("/pedidos/:id/estado", handler.UpdateOrderStatus)
}
