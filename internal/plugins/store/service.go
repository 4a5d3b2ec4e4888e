package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/audit"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// maxOrderLines caps how many distinct products one order may carry.
const maxOrderLines = 50

// Service holds the storefront business logic.
type Service interface {
	ListCatalog(ctx context.Context) ([]Product, error)
	ListAllProducts(ctx context.Context) ([]Product, error)
	CreateProduct(ctx context.Context, session *auth.Session, req ProductRequest) (*Product, error)
	UpdateProduct(ctx context.Context, session *auth.Session, id int64, req ProductRequest) (*Product, error)
	DeleteProduct(ctx context.Context, session *auth.Session, id int64) error

	PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error)
	ListOrders(ctx context.Context, limit, offset int) ([]Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	UpdateOrderStatus(ctx context.Context, session *auth.Session, id int64, status string) (*Order, error)
}

type service struct {
	repo  Repository
	audit audit.Recorder
}

// NewService creates the store service.
func NewService(repo Repository, recorder audit.Recorder) Service {
	return &service{repo: repo, audit: recorder}
}

// --- Products ---

func (s *service) ListCatalog(ctx context.Context) ([]Product, error) {
	out, err := s.repo.ListProducts(ctx, true)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing catalog: %w", err))
	}
	return out, nil
}

func (s *service) ListAllProducts(ctx context.Context) ([]Product, error) {
	out, err := s.repo.ListProducts(ctx, false)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing products: %w", err))
	}
	return out, nil
}

func validateProduct(req ProductRequest) (*Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperror.NewValidation("product name is required")
	}
	if req.PriceCents <= 0 {
		return nil, apperror.NewValidation("price must be positive")
	}
	if req.Stock < 0 {
		return nil, apperror.NewValidation("stock must not be negative")
	}
	return &Product{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		PriceCents:  req.PriceCents,
		ImagePath:   strings.TrimSpace(req.ImagePath),
		Stock:       req.Stock,
		Active:      req.Active,
	}, nil
}

func (s *service) CreateProduct(ctx context.Context, session *auth.Session, req ProductRequest) (*Product, error) {
	p, err := validateProduct(req)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = time.Now().UTC()

	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating product: %w", err))
	}
	s.audit.Record(ctx, session.UserID, audit.ActionCreate, "product",
		strconv.FormatInt(p.ID, 10), p.Name)
	return p, nil
}

func (s *service) UpdateProduct(ctx context.Context, session *auth.Session, id int64, req ProductRequest) (*Product, error) {
	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := validateProduct(req)
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, session.UserID, audit.ActionUpdate, "product",
		strconv.FormatInt(id, 10), p.Name)
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, session *auth.Session, id int64) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, session.UserID, audit.ActionDelete, "product",
		strconv.FormatInt(id, 10), "")
	return nil
}

// --- Orders ---

// PlaceOrder validates the checkout submission and hands the stock-checked
// write to the repository transaction. Totals come from the catalog, never
// from the client.
func (s *service) PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, apperror.NewValidation("customer name is required")
	}
	email := strings.ToLower(strings.TrimSpace(req.CustomerEmail))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.NewValidation("a valid customer email is required")
	}
	if len(req.Items) == 0 {
		return nil, apperror.NewValidation("order must contain at least one item")
	}
	if len(req.Items) > maxOrderLines {
		return nil, apperror.NewValidation("order has too many lines")
	}
	seen := map[int64]bool{}
	for _, item := range req.Items {
		if item.ProductID <= 0 || item.Quantity <= 0 {
			return nil, apperror.NewValidation("each item needs a product and a positive quantity")
		}
		if seen[item.ProductID] {
			return nil, apperror.NewValidation("duplicate product in order")
		}
		seen[item.ProductID] = true
	}

	order := &Order{
		CustomerName:  name,
		CustomerEmail: email,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.PlaceOrder(ctx, order, req.Items); err != nil {
		// Stock conflicts and missing products arrive already typed.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("placing order: %w", err))
	}

	slog.Info("order placed",
		slog.Int64("order_id", order.ID),
		slog.Int64("total_cents", order.TotalCents),
		slog.Int("lines", len(order.Items)),
	)
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, limit, offset int) ([]Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	out, err := s.repo.ListOrders(ctx, limit, offset)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing orders: %w", err))
	}
	return out, nil
}

func (s *service) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

// UpdateOrderStatus moves an order along its lifecycle. Cancelling returns
// the reserved stock to the catalog.
func (s *service) UpdateOrderStatus(ctx context.Context, session *auth.Session, id int64, status string) (*Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := statusTransitions[order.Status]
	if !slices.Contains(allowed, status) {
		return nil, apperror.NewConflict(
			fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
	}

	if err := s.repo.UpdateOrderStatus(ctx, id, status); err != nil {
		return nil, err
	}
	if status == StatusCancelled {
		if err := s.repo.RestoreStock(ctx, id); err != nil {
			return nil, apperror.NewInternal(fmt.Errorf("restoring stock for order %d: %w", id, err))
		}
	}

	s.audit.Record(ctx, session.UserID, audit.ActionUpdate, "order",
		strconv.FormatInt(id, 10), order.Status+" -> "+status)

	return s.repo.GetOrder(ctx, id)
}
