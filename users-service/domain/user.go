package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrNotFound indicates the referenced user does not exist in storage.
var ErrNotFound = errors.New("user not found")

// User is the identity record owned by this service. Other services only ever
// see it as a read-only snapshot carried in user.created / user.updated
// events.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// NewUserInput carries the fields accepted on creation.
type NewUserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate reports whether the input can become a user.
func (in NewUserInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return errors.New("name and email are required")
	}
	return nil
}

// UpdateUserInput carries the mutable fields; empty values leave the stored
// field untouched.
type UpdateUserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
