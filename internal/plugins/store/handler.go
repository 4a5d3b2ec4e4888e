package store

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// Handler serves the storefront endpoints.
type Handler struct {
	service Service
}

// NewHandler creates a new store handler.
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

// --- Public ---

// Catalog returns active products.
// GET /api/tienda/productos
func (h *Handler) Catalog(c echo.Context) error {
	out, err := h.service.ListCatalog(c.Request().Context())
	if err != nil {
		return err
	}
	if out == nil {
		out = []Product{}
	}
	return c.JSON(http.StatusOK, out)
}

// PlaceOrder submits a checkout.
// POST /api/tienda/pedidos
func (h *Handler) PlaceOrder(c echo.Context) error {
	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	order, err := h.service.PlaceOrder(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

// --- Admin products ---

// ListProducts returns the full catalog, inactive items included.
// GET /api/admin/tienda/productos
func (h *Handler) ListProducts(c echo.Context) error {
	out, err := h.service.ListAllProducts(c.Request().Context())
	if err != nil {
		return err
	}
	if out == nil {
		out = []Product{}
	}
	return c.JSON(http.StatusOK, out)
}

// CreateProduct adds a product.
// POST /api/admin/tienda/productos
func (h *Handler) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	p, err := h.service.CreateProduct(c.Request().Context(), auth.GetSession(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// UpdateProduct edits a product.
// PUT /api/admin/tienda/productos/:id
func (h *Handler) UpdateProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	p, err := h.service.UpdateProduct(c.Request().Context(), auth.GetSession(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// DeleteProduct removes a product.
// DELETE /api/admin/tienda/productos/:id
func (h *Handler) DeleteProduct(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteProduct(c.Request().Context(), auth.GetSession(c), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Admin orders ---

// ListOrders returns orders, newest first.
// GET /api/admin/tienda/pedidos?limit=&offset=
func (h *Handler) ListOrders(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	out, err := h.service.ListOrders(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	if out == nil {
		out = []Order{}
	}
	return c.JSON(http.StatusOK, out)
}

// GetOrder returns one order with its items.
// GET /api/admin/tienda/pedidos/:id
func (h *Handler) GetOrder(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	o, err := h.service.GetOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}

// UpdateOrderStatus moves an order along its lifecycle.
// PUT /api/admin/tienda/pedidos/:id/estado
func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	o, err := h.service.UpdateOrderStatus(c.Request().Context(), auth.GetSession(c), id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, o)
}
