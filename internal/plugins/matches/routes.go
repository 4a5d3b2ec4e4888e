package matches

import (
	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// RegisterRoutes wires the calendar and match endpoints. All reads are
// public. Match mutations pass the coarse manager gate here; the
// per-discipline check happens in the service against the match being
// touched. Tournament admin is admin-only.
func RegisterRoutes(e *echo.Echo, handler *Handler, authService auth.AuthService) {
	// Public reads
	e.GET("/api/calendario", handler.Calendar)
	e.GET("/api/calendario/dia", handler.CalendarDay)
	e.GET("/api/calendario/enlace", handler.ShareURL)
	e.GET("/api/partidos", handler.Window)
	e.GET("/api/partidos/proximos", handler.Upcoming)
	e.GET("/api/partidos/:id", handler.GetMatch)
	e.GET("/api/torneos", handler.ListTournaments)

	// Manager mutations
	mgr := e.Group("/api/admin/partidos", auth.RequireAuth(authService), auth.RequireManager())
	mgr.POST("", handler.CreateMatch)
	mgr.PUT("/:id", handler.UpdateMatch)
	mgr.DELETE("/:id", handler.DeleteMatch)
	mgr.PUT("/:id/resultado", handler.SetResult)
	mgr.DELETE("/:id/resultado", handler.ClearResult)

	// Admin tournaments
	admin := e.Group("/api/admin/torneos", auth.RequireAuth(authService), auth.RequireAdmin())
	admin.POST("", handler.CreateTournament)
	admin.DELETE("/:id", handler.DeleteTournament)
}
