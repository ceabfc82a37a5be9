package api

import (
	"context"

	"microshop/orders-service/domain"
)

// Storage abstracts persistence for handlers.
type Storage interface {
	CreateOrder(ctx context.Context, o domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrder(ctx context.Context, o domain.Order) error
	ListOrders(ctx context.Context) ([]domain.Order, error)
}

// Publisher sends domain events to the bus, best-effort.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// UserValidator decides whether an order may reference a user. It returns
// domain.ErrInvalidUser or domain.ErrServiceUnavailable when it may not.
type UserValidator interface {
	ValidateUser(ctx context.Context, userID string) error
}

// Keys holds the resolved routing keys this service publishes under.
type Keys struct {
	OrderCreated   string
	OrderCancelled string
}
