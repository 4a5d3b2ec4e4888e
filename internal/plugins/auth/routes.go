package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires the auth endpoints onto the Echo instance.
// Login is public; everything else requires a valid session, and the
// user-management endpoints additionally require admin rights.
func RegisterRoutes(e *echo.Echo, handler *AuthHandler, service AuthService) {
	api := e.Group("/api/auth")
	api.POST("/login", handler.Login)
	api.POST("/logout", handler.Logout, RequireAuth(service))
	api.GET("/me", handler.Me, RequireAuth(service))

	admin := e.Group("/api/admin/users", RequireAuth(service), RequireAdmin())
	admin.GET("", handler.ListUsers)
	admin.POST("", handler.CreateUser)
	admin.DELETE("/:id", handler.DeleteUser)
}
