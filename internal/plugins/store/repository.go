package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clubcasares/clubserver/internal/apperror"
)

// Repository defines persistence operations for products and orders.
// PlaceOrder and RestoreStock run inside transactions: stock checks,
// decrements, and order rows commit or roll back together.
type Repository interface {
	ListProducts(ctx context.Context, activeOnly bool) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id int64) error

	// PlaceOrder validates stock under row locks, decrements it, computes
	// the total from current prices, and inserts the order with its items,
	// all in one transaction.
	PlaceOrder(ctx context.Context, order *Order, items []OrderItemRequest) error

	ListOrders(ctx context.Context, limit, offset int) ([]Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) error

	// RestoreStock returns an order's quantities to the catalog, used when
	// an order is cancelled.
	RestoreStock(ctx context.Context, orderID int64) error
}

type repository struct {
	db *sql.DB
}

// NewRepository creates a new MariaDB-backed store repository.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productCols = `id, name, description, price_cents, image_path, stock, active, created_at`

func scanProduct(scanner interface{ Scan(...any) error }) (*Product, error) {
	p := &Product{}
	err := scanner.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents,
		&p.ImagePath, &p.Stock, &p.Active, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning product row: %w", err)
	}
	return p, nil
}

func (r *repository) ListProducts(ctx context.Context, activeOnly bool) ([]Product, error) {
	query := `SELECT ` + productCols + ` FROM products`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productCols+` FROM products WHERE id = ?`, id))
}

func (r *repository) CreateProduct(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO products (name, description, price_cents, image_path, stock, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.Description, p.PriceCents, p.ImagePath, p.Stock, p.Active, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading product id: %w", err)
	}
	return nil
}

func (r *repository) UpdateProduct(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = ?, description = ?, price_cents = ?,
		        image_path = ?, stock = ?, active = ?
		 WHERE id = ?`,
		p.Name, p.Description, p.PriceCents, p.ImagePath, p.Stock, p.Active, p.ID)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("product not found")
	}
	return nil
}

func (r *repository) DeleteProduct(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("product not found")
	}
	return nil
}

// PlaceOrder runs the whole checkout write inside one transaction. Rows
// are locked with FOR UPDATE so two concurrent checkouts cannot both take
// the last unit.
func (r *repository) PlaceOrder(ctx context.Context, order *Order, items []OrderItemRequest) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning order transaction: %w", err)
	}
	defer tx.Rollback()

	var total int64
	lines := make([]OrderItem, 0, len(items))
	for _, item := range items {
		var (
			name  string
			price int64
			stock int
		)
		err := tx.QueryRowContext(ctx,
			`SELECT name, price_cents, stock FROM products
			 WHERE id = ? AND active = 1 FOR UPDATE`, item.ProductID).
			Scan(&name, &price, &stock)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NewNotFound(fmt.Sprintf("product %d is not available", item.ProductID))
		}
		if err != nil {
			return fmt.Errorf("locking product %d: %w", item.ProductID, err)
		}
		if stock < item.Quantity {
			return apperror.NewConflict(fmt.Sprintf("not enough stock for %s", name))
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET stock = stock - ? WHERE id = ?`,
			item.Quantity, item.ProductID); err != nil {
			return fmt.Errorf("decrementing stock for product %d: %w", item.ProductID, err)
		}

		total += price * int64(item.Quantity)
		lines = append(lines, OrderItem{
			ProductID:      item.ProductID,
			ProductName:    name,
			Quantity:       item.Quantity,
			UnitPriceCents: price,
		})
	}

	order.TotalCents = total
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (customer_name, customer_email, status, total_cents, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		order.CustomerName, order.CustomerEmail, order.Status, order.TotalCents, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	order.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading order id: %w", err)
	}

	for i := range lines {
		lines[i].OrderID = order.ID
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price_cents)
			 VALUES (?, ?, ?, ?, ?)`,
			lines[i].OrderID, lines[i].ProductID, lines[i].ProductName,
			lines[i].Quantity, lines[i].UnitPriceCents); err != nil {
			return fmt.Errorf("inserting order item: %w", err)
		}
	}
	order.Items = lines

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing order transaction: %w", err)
	}
	return nil
}

func (r *repository) ListOrders(ctx context.Context, limit, offset int) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, customer_name, customer_email, status, total_cents, created_at
		 FROM orders ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerName, &o.CustomerEmail,
			&o.Status, &o.TotalCents, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repository) GetOrder(ctx context.Context, id int64) (*Order, error) {
	o := &Order{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_name, customer_email, status, total_cents, created_at
		 FROM orders WHERE id = ?`, id).
		Scan(&o.ID, &o.CustomerName, &o.CustomerEmail, &o.Status, &o.TotalCents, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scanning order row: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT order_id, product_id, product_name, quantity, unit_price_cents
		 FROM order_items WHERE order_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

func (r *repository) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound("order not found")
	}
	return nil
}

// RestoreStock adds an order's quantities back in one transaction.
func (r *repository) RestoreStock(ctx context.Context, orderID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning restock transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE products p
		 JOIN order_items oi ON oi.product_id = p.id
		 SET p.stock = p.stock + oi.quantity
		 WHERE oi.order_id = ?`, orderID); err != nil {
		return fmt.Errorf("restoring stock: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing restock transaction: %w", err)
	}
	return nil
}
