package media

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// Handler exposes media endpoints over HTTP.
type Handler struct {
	service Service
}

// NewHandler creates a new media handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Upload receives a multipart file under the "file" field.
func (h *Handler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperror.NewBadRequest("missing file field")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return apperror.NewBadRequest("unreadable upload")
	}
	defer src.Close()

	m, err := h.service.Upload(c.Request().Context(), auth.GetSession(c),
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), fileHeader.Size, src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) List(c echo.Context) error {
	out, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if out == nil {
		out = []Media{}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperror.NewBadRequest("invalid media id")
	}
	if err := h.service.Delete(c.Request().Context(), auth.GetSession(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
