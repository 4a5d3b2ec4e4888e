package locations

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// Handler serves the location endpoints.
type Handler struct {
	service Service
}

// NewHandler creates a new locations handler.
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

// List returns all venues for the match form's reference dropdown.
// GET /api/sedes
func (h *Handler) List(c echo.Context) error {
	out, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if out == nil {
		out = []Location{}
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds a venue.
// POST /api/admin/sedes
func (h *Handler) Create(c echo.Context) error {
	var req LocationRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	l, err := h.service.Create(c.Request().Context(), auth.GetSession(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, l)
}

// Update edits a venue.
// PUT /api/admin/sedes/:id
func (h *Handler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req LocationRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	l, err := h.service.Update(c.Request().Context(), auth.GetSession(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

// Delete removes a venue.
// DELETE /api/admin/sedes/:id
func (h *Handler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), auth.GetSession(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
