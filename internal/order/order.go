package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no order matches the id.
var ErrNotFound = errors.New("order not found")

// Status values an order moves through.
const (
	StatusPending   = "pending"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCanceled  = "canceled"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// Order represents a placed purchase.
type Order struct {
	ID                string
	ProductIDs        []string
	Status            string
	OrderDate         time.Time
	TotalPrice        float64
	ShippingAddressID string
}

// Repository persists orders.
type Repository interface {
	Create(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context) ([]Order, error)
	Update(ctx context.Context, o Order) error
	Delete(ctx context.Context, id string) error
}

// PostgresRepository stores orders in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an order record.
func (r *PostgresRepository) Create(ctx context.Context, o Order) error {
	orderID, err := uuid.Parse(o.ID)
	if err != nil {
		return err
	}
	address, err := nullID(o.ShippingAddressID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO orders (id, product_ids, status, order_date, total_price, shipping_address_id)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		orderID, o.ProductIDs, o.Status, o.OrderDate.UTC(), o.TotalPrice, address)
	return err
}

// Get fetches an order by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return Order{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, product_ids, status, order_date, total_price, shipping_address_id
        FROM orders WHERE id = $1`, orderID)
	return scanOrder(row)
}

// List returns all orders, most recent first.
func (r *PostgresRepository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.db.Query(ctx, `SELECT id, product_ids, status, order_date, total_price, shipping_address_id
        FROM orders ORDER BY order_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Update persists the full order state.
func (r *PostgresRepository) Update(ctx context.Context, o Order) error {
	orderID, err := uuid.Parse(o.ID)
	if err != nil {
		return ErrNotFound
	}
	address, err := nullID(o.ShippingAddressID)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE orders
        SET product_ids = $1, status = $2, total_price = $3, shipping_address_id = $4
        WHERE id = $5`,
		o.ProductIDs, o.Status, o.TotalPrice, address, orderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an order record.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o         Order
		id        uuid.UUID
		orderDate time.Time
		address   *uuid.UUID
	)
	err := row.Scan(&id, &o.ProductIDs, &o.Status, &orderDate, &o.TotalPrice, &address)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	o.ID = id.String()
	o.OrderDate = orderDate.UTC()
	if address != nil {
		o.ShippingAddressID = address.String()
	}
	return o, nil
}

func nullID(id string) (*uuid.UUID, error) {
	if id == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid shipping_address_id %q: %w", id, err)
	}
	return &parsed, nil
}
