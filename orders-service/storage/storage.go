// Package storage persists order records in Postgres. Line items are stored
// as jsonb since their shape is owned by callers.
package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"microshop/orders-service/domain"
)

// Storage provides access to the orders table.
type Storage struct {
	pool *pgxpool.Pool
}

// New connects a pgx pool to the given database URL.
func New(ctx context.Context, databaseURL string) (*Storage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Storage{pool: pool}, nil
}

// Close releases the pool.
func (s *Storage) Close() {
	s.pool.Close()
}

// CreateOrder inserts the record.
func (s *Storage) CreateOrder(ctx context.Context, o domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO orders (id, user_id, items, total, status, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.UserID, items, o.Total, o.Status, o.CreatedAt)
	return err
}

// GetOrder returns the order or (nil, nil) when absent.
func (s *Storage) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	var items []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, items, total, status, created_at, cancelled_at FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.UserID, &items, &o.Total, &o.Status, &o.CreatedAt, &o.CancelledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateOrder persists a status transition. Absence is reported as
// domain.ErrNotFound.
func (s *Storage) UpdateOrder(ctx context.Context, o domain.Order) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $2, cancelled_at = $3 WHERE id = $1`,
		o.ID, o.Status, o.CancelledAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListOrders returns every order, oldest first.
func (s *Storage) ListOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, items, total, status, created_at, cancelled_at FROM orders ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		var o domain.Order
		var items []byte
		if err := rows.Scan(&o.ID, &o.UserID, &items, &o.Total, &o.Status, &o.CreatedAt, &o.CancelledAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
