package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/domain"
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	List(ctx context.Context) ([]*domain.Order, error)
	FindByID(ctx context.Context, orderID string) (*domain.Order, error)
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	Delete(ctx context.Context, orderID string) error
}

const orderColumns = `order_id, address, status, product_id, quantity, unit_cost, total_cost`

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a Postgres backed OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) List(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY seq`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", unavailable(err))
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", unavailable(err))
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", unavailable(err))
	}

	return orders, nil
}

func (r *orderRepository) FindByID(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", unavailable(err))
	}

	return order, nil
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (order_id, address, status, product_id, quantity, unit_cost, total_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		order.OrderID,
		order.Address,
		string(order.Status),
		order.ProductID,
		order.Quantity,
		order.UnitCost,
		order.TotalCost,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrOrderAlreadyExists
		}
		return fmt.Errorf("failed to create order: %w", unavailable(err))
	}

	return nil
}

// Update only writes the mutable columns; costs and quantity are snapshots
func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	query := `UPDATE orders SET address = $2, status = $3 WHERE order_id = $1`

	result, err := r.db.ExecContext(ctx, query, order.OrderID, order.Address, string(order.Status))
	if err != nil {
		return fmt.Errorf("failed to update order: %w", unavailable(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", unavailable(err))
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func (r *orderRepository) Delete(ctx context.Context, orderID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", unavailable(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", unavailable(err))
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var status string
	err := row.Scan(
		&order.OrderID,
		&order.Address,
		&status,
		&order.ProductID,
		&order.Quantity,
		&order.UnitCost,
		&order.TotalCost,
	)
	if err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatus(status)
	return order, nil
}
