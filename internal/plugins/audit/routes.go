package audit

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires the audit endpoints. The caller supplies the auth
// middleware chain so this package doesn't import the auth plugin.
func RegisterRoutes(e *echo.Echo, handler *Handler, adminGate ...echo.MiddlewareFunc) {
	g := e.Group("/api/admin/audit", adminGate...)
	g.GET("", handler.List)
}
