package api

import (
	"context"

	"microshop/users-service/domain"
)

// Storage abstracts persistence for handlers.
type Storage interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, u domain.User) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// Publisher sends domain events to the bus. Publishing is best-effort: every
// caller logs failures and never surfaces them to the HTTP client.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Keys holds the resolved routing keys this service publishes under.
type Keys struct {
	UserCreated string
	UserUpdated string
}
