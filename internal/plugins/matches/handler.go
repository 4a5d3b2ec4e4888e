package matches

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// Handler serves the calendar and match endpoints.
type Handler struct {
	service Service
}

// NewHandler creates a new matches handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NewBadRequest("invalid id")
	}
	return id, nil
}

// --- Public reads ---

// Calendar returns the derived calendar view.
// GET /api/calendario?modo=month|week&fecha=YYYY-MM-DD&disciplina=<id>
func (h *Handler) Calendar(c echo.Context) error {
	mode := ViewMode(c.QueryParam("modo"))
	if mode == "" {
		mode = ModeMonth
	}

	anchor := Today()
	if v := c.QueryParam("fecha"); v != "" {
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		anchor = parsed
	}

	var disciplineID int64
	if v := c.QueryParam("disciplina"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return apperror.NewBadRequest("invalid disciplina parameter")
		}
		disciplineID = id
	}

	view, err := h.service.Schedule(c.Request().Context(), disciplineID, mode, anchor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// CalendarDay returns one day's matches for deep links carrying fecha.
// GET /api/calendario/dia?fecha=YYYY-MM-DD
func (h *Handler) CalendarDay(c echo.Context) error {
	day, err := ParseDate(c.QueryParam("fecha"))
	if err != nil {
		return err
	}
	matches, err := h.service.Day(c.Request().Context(), day)
	if err != nil {
		return err
	}
	if matches == nil {
		matches = []Match{}
	}
	return c.JSON(http.StatusOK, echo.Map{"date": day, "matches": matches})
}

// ShareURL validates share parameters and returns the canonical URL to
// copy. Accepts exactly one of partido, fecha, or desde+hasta.
// GET /api/calendario/enlace?partido=|fecha=|desde=&hasta=
func (h *Handler) ShareURL(c echo.Context) error {
	link, err := DecodeShareLink(c.QueryParams())
	if err != nil {
		return err
	}
	u, err := h.service.ShareURL(link)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"url": u})
}

// Window returns all matches in an inclusive date range.
// GET /api/partidos?desde=YYYY-MM-DD&hasta=YYYY-MM-DD
func (h *Handler) Window(c echo.Context) error {
	from, err := ParseDate(c.QueryParam("desde"))
	if err != nil {
		return err
	}
	to, err := ParseDate(c.QueryParam("hasta"))
	if err != nil {
		return err
	}

	matches, err := h.service.Window(c.Request().Context(), from, to)
	if err != nil {
		return err
	}
	if matches == nil {
		matches = []Match{}
	}
	return c.JSON(http.StatusOK, matches)
}

// Upcoming returns the next matches grouped by day.
// GET /api/partidos/proximos
func (h *Handler) Upcoming(c echo.Context) error {
	buckets, err := h.service.Upcoming(c.Request().Context())
	if err != nil {
		return err
	}
	if buckets == nil {
		buckets = []DayBucket{}
	}
	return c.JSON(http.StatusOK, buckets)
}

// GetMatch returns a single match with its result.
// GET /api/partidos/:id
func (h *Handler) GetMatch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	m, err := h.service.GetMatch(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// ListTournaments returns the tournament reference list.
// GET /api/torneos
func (h *Handler) ListTournaments(c echo.Context) error {
	out, err := h.service.ListTournaments(c.Request().Context())
	if err != nil {
		return err
	}
	if out == nil {
		out = []Tournament{}
	}
	return c.JSON(http.StatusOK, out)
}

// --- Manager mutations ---

// CreateMatch adds a match.
// POST /api/admin/partidos
func (h *Handler) CreateMatch(c echo.Context) error {
	var req MatchRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	m, err := h.service.Create(c.Request().Context(), auth.GetSession(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

// UpdateMatch edits a match.
// PUT /api/admin/partidos/:id
func (h *Handler) UpdateMatch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req MatchRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	m, err := h.service.Update(c.Request().Context(), auth.GetSession(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// DeleteMatch removes a match and its result.
// DELETE /api/admin/partidos/:id
func (h *Handler) DeleteMatch(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), auth.GetSession(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SetResult creates or replaces a match result.
// PUT /api/admin/partidos/:id/resultado
func (h *Handler) SetResult(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ResultRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	m, err := h.service.SetResult(c.Request().Context(), auth.GetSession(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

// ClearResult deletes a match result.
// DELETE /api/admin/partidos/:id/resultado
func (h *Handler) ClearResult(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.ClearResult(c.Request().Context(), auth.GetSession(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Admin tournaments ---

// CreateTournament adds a tournament.
// POST /api/admin/torneos
func (h *Handler) CreateTournament(c echo.Context) error {
	var req TournamentRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	t, err := h.service.CreateTournament(c.Request().Context(), auth.GetSession(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

// DeleteTournament removes a tournament.
// DELETE /api/admin/torneos/:id
func (h *Handler) DeleteTournament(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTournament(c.Request().Context(), auth.GetSession(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
