package news

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// Handler serves the news endpoints.
type Handler struct {
	service Service
}

// NewHandler creates a new news handler.
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

// ListPublished returns one page of the public news feed.
// GET /api/noticias?pagina=
func (h *Handler) ListPublished(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("pagina"))
	out, err := h.service.ListPublished(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

// GetBySlug returns a published article.
// GET /api/noticias/:slug
func (h *Handler) GetBySlug(c echo.Context) error {
	a, err := h.service.GetPublishedBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// ListAll returns every article, drafts included, for the admin dashboard.
// GET /api/admin/noticias
func (h *Handler) ListAll(c echo.Context) error {
	out, err := h.service.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	if out == nil {
		out = []Article{}
	}
	return c.JSON(http.StatusOK, out)
}

// Create adds an article.
// POST /api/admin/noticias
func (h *Handler) Create(c echo.Context) error {
	var req ArticleRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	a, err := h.service.Create(c.Request().Context(), auth.GetSession(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

// Update edits an article.
// PUT /api/admin/noticias/:id
func (h *Handler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ArticleRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	a, err := h.service.Update(c.Request().Context(), auth.GetSession(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Delete removes an article.
// DELETE /api/admin/noticias/:id
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
