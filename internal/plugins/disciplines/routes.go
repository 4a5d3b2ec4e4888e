package disciplines

import (
	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// RegisterRoutes wires the discipline endpoints. Public reads are open;
// discipline CRUD and manager assignments require admin; roster mutations
// require the coarse manager gate (the per-discipline check lives in the
// service).
func RegisterRoutes(e *echo.Echo, handler *Handler, authService auth.AuthService) {
	// Public
	e.GET("/api/disciplinas", handler.ListDisciplines)
	e.GET("/api/disciplinas/:slug", handler.GetDiscipline)

	// Admin: discipline CRUD and manager assignments
	admin := e.Group("/api/admin/disciplinas", auth.RequireAuth(authService), auth.RequireAdmin())
	admin.POST("", handler.CreateDiscipline)
	admin.PUT("/:id", handler.UpdateDiscipline)
	admin.DELETE("/:id", handler.DeleteDiscipline)
	admin.GET("/:id/managers", handler.ListManagers)
	admin.POST("/:id/managers", handler.AssignManager)
	admin.DELETE("/:id/managers/:userId", handler.RemoveManager)

	// Managers: roster mutations
	mgr := e.Group("/api/admin", auth.RequireAuth(authService), auth.RequireManager())
	mgr.POST("/disciplinas/:id/jugadores", handler.CreatePlayer)
	mgr.PUT("/jugadores/:id", handler.UpdatePlayer)
	mgr.DELETE("/jugadores/:id", handler.DeletePlayer)
	mgr.POST("/disciplinas/:id/staff", handler.CreateStaff)
	mgr.PUT("/staff/:id", handler.UpdateStaff)
	mgr.DELETE("/staff/:id", handler.DeleteStaff)
}
