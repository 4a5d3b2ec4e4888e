package audit

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handler serves the admin audit log endpoints.
type Handler struct {
	service Service
}

// NewHandler creates a new audit handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List returns audit entries, newest first.
// GET /api/admin/audit?limit=&offset=
func (h *Handler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	entries, err := h.service.List(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}
