package disciplines

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// Handler serves the discipline, roster, and manager endpoints.
type Handler struct {
	service Service
}

// NewHandler creates a new disciplines handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// pathID parses the :id path parameter.
func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewBadRequest("invalid " + name)
	}
	return id, nil
}

// --- Public reads ---

// ListDisciplines returns all disciplines for filters and navigation.
// GET /api/disciplinas
func (h *Handler) ListDisciplines(c echo.Context) error {
	out, err := h.service.ListDisciplines(c.Request().Context())
	if err != nil {
		return err
	}
	if out == nil {
		out = []Discipline{}
	}
	return c.JSON(http.StatusOK, out)
}

// GetDiscipline returns one discipline by slug, with its rosters.
// GET /api/disciplinas/:slug
func (h *Handler) GetDiscipline(c echo.Context) error {
	ctx := c.Request().Context()

	d, err := h.service.GetDisciplineBySlug(ctx, c.Param("slug"))
	if err != nil {
		return err
	}
	players, err := h.service.ListPlayers(ctx, d.ID)
	if err != nil {
		return err
	}
	staff, err := h.service.ListStaff(ctx, d.ID)
	if err != nil {
		return err
	}
	if players == nil {
		players = []Player{}
	}
	if staff == nil {
		staff = []Staff{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"discipline": d,
		"players":    players,
		"staff":      staff,
	})
}

// --- Admin discipline CRUD ---

// CreateDiscipline creates a discipline.
// POST /api/admin/disciplinas
func (h *Handler) CreateDiscipline(c echo.Context) error {
	var req DisciplineRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	d, err := h.service.CreateDiscipline(c.Request().Context(), auth.GetSession(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

// UpdateDiscipline updates a discipline.
// PUT /api/admin/disciplinas/:id
func (h *Handler) UpdateDiscipline(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req DisciplineRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	d, err := h.service.UpdateDiscipline(c.Request().Context(), auth.GetSession(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// DeleteDiscipline removes a discipline and (via FK cascade) its roster.
// DELETE /api/admin/disciplinas/:id
func (h *Handler) DeleteDiscipline(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteDiscipline(c.Request().Context(), auth.GetSession(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Roster management (per-discipline gate in the service) ---

// CreatePlayer adds a player to a discipline's roster.
// POST /api/admin/disciplinas/:id/jugadores
func (h *Handler) CreatePlayer(c echo.Context) error {
	disciplineID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req PlayerRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	p, err := h.service.CreatePlayer(c.Request().Context(), auth.GetSession(c), disciplineID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// UpdatePlayer edits a roster entry.
// PUT /api/admin/jugadores/:id
func (h *Handler) UpdatePlayer(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req PlayerRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	p, err := h.service.UpdatePlayer(c.Request().Context(), auth.GetSession(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// DeletePlayer removes a roster entry.
// DELETE /api/admin/jugadores/:id
func (h *Handler) DeletePlayer(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeletePlayer(c.Request().Context(), auth.GetSession(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateStaff adds a staff member to a discipline.
// POST /api/admin/disciplinas/:id/staff
func (h *Handler) CreateStaff(c echo.Context) error {
	disciplineID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req StaffRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	m, err := h.service.CreateStaff(c.Request().Context(), auth.GetSession(c), disciplineID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// UpdateStaff edits a staff entry.
// PUT /api/admin/staff/:id
func (h *Handler) UpdateStaff(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req StaffRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	m, err := h.service.UpdateStaff(c.Request().Context(), auth.GetSession(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// DeleteStaff removes a staff entry.
// DELETE /api/admin/staff/:id
func (h *Handler) DeleteStaff(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteStaff(c.Request().Context(), auth.GetSession(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Manager assignments (admin only) ---

// ListManagers lists the scoped managers of a discipline.
// GET /api/admin/disciplinas/:id/managers
func (h *Handler) ListManagers(c echo.Context) error {
	disciplineID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	out, err := h.service.ListManagers(c.Request().Context(), disciplineID)
	if err != nil {
		return err
	}
	if out == nil {
		out = []Manager{}
	}
	return c.JSON(http.StatusOK, out)
}

// AssignManager grants a user management rights over a discipline.
// POST /api/admin/disciplinas/:id/managers
func (h *Handler) AssignManager(c echo.Context) error {
	disciplineID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req AssignManagerRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if err := h.service.AssignManager(c.Request().Context(), auth.GetSession(c), disciplineID, req.UserID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveManager revokes a user's management rights over a discipline.
// DELETE /api/admin/disciplinas/:id/managers/:userId
func (h *Handler) RemoveManager(c echo.Context) error {
	disciplineID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.RemoveManager(c.Request().Context(), auth.GetSession(c), disciplineID, c.Param("userId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
