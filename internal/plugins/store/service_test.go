package store

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/clubcasares/clubserver/internal/apperror"
	"github.com/clubcasares/clubserver/internal/plugins/auth"
)

// memRepo is an in-memory Repository mirroring the transactional semantics
// of the real one: PlaceOrder either applies every stock change or none.
type memRepo struct {
	products map[int64]*Product
	orders   map[int64]*Order
	nextID   int64

	restockCalls int
}

func newMemRepo() *memRepo {
	return &memRepo{
		products: map[int64]*Product{},
		orders:   map[int64]*Order{},
		nextID:   1,
	}
}

func (r *memRepo) addProduct(p Product) *Product {
	p.ID = r.nextID
	r.nextID++
	r.products[p.ID] = &p
	return &p
}

func (r *memRepo) ListProducts(ctx context.Context, activeOnly bool) ([]Product, error) {
	var out []Product
	for _, p := range r.products {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memRepo) GetProduct(ctx context.Context, id int64) (*Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, apperror.NewNotFound("product not found")
	}
	found := *p
	return &found, nil
}

func (r *memRepo) CreateProduct(ctx context.Context, p *Product) error {
	created := r.addProduct(*p)
	p.ID = created.ID
	return nil
}

func (r *memRepo) UpdateProduct(ctx context.Context, p *Product) error {
	if _, ok := r.products[p.ID]; !ok {
		return apperror.NewNotFound("product not found")
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memRepo) DeleteProduct(ctx context.Context, id int64) error {
	delete(r.products, id)
	return nil
}

func (r *memRepo) PlaceOrder(ctx context.Context, order *Order, items []OrderItemRequest) error {
	// Validate everything before mutating anything, like the SQL
	// transaction would.
	for _, item := range items {
		p, ok := r.products[item.ProductID]
		if !ok || !p.Active {
			return apperror.NewNotFound("product is not available")
		}
		if p.Stock < item.Quantity {
			return apperror.NewConflict("not enough stock for " + p.Name)
		}
	}
	var total int64
	for _, item := range items {
		p := r.products[item.ProductID]
		p.Stock -= item.Quantity
		total += p.PriceCents * int64(item.Quantity)
		order.Items = append(order.Items, OrderItem{
			ProductID:      p.ID,
			ProductName:    p.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: p.PriceCents,
		})
	}
	order.TotalCents = total
	order.ID = r.nextID
	r.nextID++
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *memRepo) ListOrders(ctx context.Context, limit, offset int) ([]Order, error) {
	return nil, nil
}

func (r *memRepo) GetOrder(ctx context.Context, id int64) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, apperror.NewNotFound("order not found")
	}
	found := *o
	return &found, nil
}

func (r *memRepo) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	o, ok := r.orders[id]
	if !ok {
		return apperror.NewNotFound("order not found")
	}
	o.Status = status
	return nil
}

func (r *memRepo) RestoreStock(ctx context.Context, orderID int64) error {
	r.restockCalls++
	o, ok := r.orders[orderID]
	if !ok {
		return apperror.NewNotFound("order not found")
	}
	for _, item := range o.Items {
		if p, ok := r.products[item.ProductID]; ok {
			p.Stock += item.Quantity
		}
	}
	return nil
}

type noopRecorder struct{}

func (noopRecorder) Record(ctx context.Context, userID, action, targetType, targetID, detail string) {
}

func assertAppError(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected AppError with code %d, got nil", code)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Fatalf("expected code %d, got %d (%v)", code, appErr.Code, appErr)
	}
}

func adminSession() *auth.Session {
	return &auth.Session{UserID: "admin", IsAdmin: true, CanManage: true}
}

func TestPlaceOrderComputesTotalServerSide(t *testing.T) {
	repo := newMemRepo()
	shirt := repo.addProduct(Product{Name: "Camiseta", PriceCents: 1500000, Stock: 10, Active: true})
	mug := repo.addProduct(Product{Name: "Taza", PriceCents: 300000, Stock: 5, Active: true})
	svc := NewService(repo, noopRecorder{})

	order, err := svc.PlaceOrder(context.Background(), OrderRequest{
		CustomerName:  "Ana López",
		CustomerEmail: "ana@club.test",
		Items: []OrderItemRequest{
			{ProductID: shirt.ID, Quantity: 2},
			{ProductID: mug.ID, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	want := int64(2*1500000 + 300000)
	if order.TotalCents != want {
		t.Errorf("TotalCents = %d, want %d", order.TotalCents, want)
	}
	if order.Status != StatusPending {
		t.Errorf("Status = %q, want %q", order.Status, StatusPending)
	}
	if repo.products[shirt.ID].Stock != 8 || repo.products[mug.ID].Stock != 4 {
		t.Errorf("stock not decremented: shirt=%d mug=%d",
			repo.products[shirt.ID].Stock, repo.products[mug.ID].Stock)
	}
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	repo := newMemRepo()
	shirt := repo.addProduct(Product{Name: "Camiseta", PriceCents: 1500000, Stock: 1, Active: true})
	svc := NewService(repo, noopRecorder{})

	_, err := svc.PlaceOrder(context.Background(), OrderRequest{
		CustomerName:  "Ana",
		CustomerEmail: "ana@club.test",
		Items:         []OrderItemRequest{{ProductID: shirt.ID, Quantity: 2}},
	})
	assertAppError(t, err, http.StatusConflict)

	if repo.products[shirt.ID].Stock != 1 {
		t.Errorf("stock changed on rejected order: %d", repo.products[shirt.ID].Stock)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	svc := NewService(newMemRepo(), noopRecorder{})
	ctx := context.Background()

	tests := []struct {
		name string
		req  OrderRequest
	}{
		{"missing name", OrderRequest{CustomerEmail: "a@b.c", Items: []OrderItemRequest{{ProductID: 1, Quantity: 1}}}},
		{"bad email", OrderRequest{CustomerName: "A", CustomerEmail: "nope", Items: []OrderItemRequest{{ProductID: 1, Quantity: 1}}}},
		{"no items", OrderRequest{CustomerName: "A", CustomerEmail: "a@b.c"}},
		{"zero quantity", OrderRequest{CustomerName: "A", CustomerEmail: "a@b.c", Items: []OrderItemRequest{{ProductID: 1, Quantity: 0}}}},
		{"duplicate product", OrderRequest{CustomerName: "A", CustomerEmail: "a@b.c", Items: []OrderItemRequest{{ProductID: 1, Quantity: 1}, {ProductID: 1, Quantity: 2}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(ctx, tt.req)
			assertAppError(t, err, http.StatusUnprocessableEntity)
		})
	}
}

func TestCancelRestoresStock(t *testing.T) {
	repo := newMemRepo()
	shirt := repo.addProduct(Product{Name: "Camiseta", PriceCents: 1500000, Stock: 3, Active: true})
	svc := NewService(repo, noopRecorder{})
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, OrderRequest{
		CustomerName:  "Ana",
		CustomerEmail: "ana@club.test",
		Items:         []OrderItemRequest{{ProductID: shirt.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	got, err := svc.UpdateOrderStatus(ctx, adminSession(), order.ID, StatusCancelled)
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("Status = %q, want cancelled", got.Status)
	}
	if repo.restockCalls != 1 {
		t.Errorf("restockCalls = %d, want 1", repo.restockCalls)
	}
	if repo.products[shirt.ID].Stock != 3 {
		t.Errorf("stock after cancel = %d, want 3", repo.products[shirt.ID].Stock)
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	repo := newMemRepo()
	shirt := repo.addProduct(Product{Name: "Camiseta", PriceCents: 1500000, Stock: 5, Active: true})
	svc := NewService(repo, noopRecorder{})
	ctx := context.Background()

	order, err := svc.PlaceOrder(ctx, OrderRequest{
		CustomerName:  "Ana",
		CustomerEmail: "ana@club.test",
		Items:         []OrderItemRequest{{ProductID: shirt.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	// pendiente -> entregado skips pagado and is rejected.
	_, err = svc.UpdateOrderStatus(ctx, adminSession(), order.ID, StatusDelivered)
	assertAppError(t, err, http.StatusConflict)

	if _, err := svc.UpdateOrderStatus(ctx, adminSession(), order.ID, StatusPaid); err != nil {
		t.Fatalf("pendiente -> pagado: %v", err)
	}
	if _, err := svc.UpdateOrderStatus(ctx, adminSession(), order.ID, StatusDelivered); err != nil {
		t.Fatalf("pagado -> entregado: %v", err)
	}

	// Delivered is terminal.
	_, err = svc.UpdateOrderStatus(ctx, adminSession(), order.ID, StatusCancelled)
	assertAppError(t, err, http.StatusConflict)
}
