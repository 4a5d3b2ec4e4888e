package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// Handler serves the site configuration endpoints.
type Handler struct {
	service Service
}

// NewHandler creates a new settings handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetConfig returns the resolved site configuration.
// GET /api/config
func (h *Handler) GetConfig(c echo.Context) error {
	cfg, err := h.service.GetConfig(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cfg)
}

// UpdateConfig replaces the site configuration.
// PUT /api/admin/config
func (h *Handler) UpdateConfig(c echo.Context) error {
	var req SiteConfigRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	cfg, err := h.service.UpdateConfig(c.Request().Context(), auth.GetSession(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cfg)
}
