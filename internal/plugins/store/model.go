// Package store implements the club's merchandise storefront: a public
// product catalog and an order flow with server-side totals and stock
// accounting. Stock moves only inside transactions, so overselling and
// half-written orders cannot happen.
package store

import "time"

// Product is a catalog item. Prices are integer cents (ARS centavos) to
// avoid floating-point money.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	ImagePath   string    `json:"image_path"`
	Stock       int       `json:"stock"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Order statuses. Cancelling a paid or pending order restores stock.
const (
	StatusPending   = "pendiente"
	StatusPaid      = "pagado"
	StatusDelivered = "entregado"
	StatusCancelled = "cancelado"
)

// statusTransitions maps each status to the statuses it may move to.
var statusTransitions = map[string][]string{
	StatusPending:   {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// Order is a customer purchase. Totals are computed server-side from the
// product prices at placement time.
type Order struct {
	ID            int64       `json:"id"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	Status        string      `json:"status"`
	TotalCents    int64       `json:"total_cents"`
	Items         []OrderItem `json:"items,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
}

// OrderItem is one line of an order. UnitPriceCents freezes the price the
// customer saw, independent of later catalog edits.
type OrderItem struct {
	OrderID        int64  `json:"order_id"`
	ProductID      int64  `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// --- Request DTOs ---

// ProductRequest holds the fields for creating or updating a product.
type ProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	ImagePath   string `json:"image_path"`
	Stock       int    `json:"stock"`
	Active      bool   `json:"active"`
}

// OrderRequest holds a customer's checkout submission.
type OrderRequest struct {
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	Items         []OrderItemRequest `json:"items"`
}

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// StatusRequest holds an admin status change.
type StatusRequest struct {
	Status string `json:"status"`
}
