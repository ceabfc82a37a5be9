package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// Order statuses. The only transition is created -> cancelled; cancelled is
// terminal.
const (
	StatusCreated   = "created"
	StatusCancelled = "cancelled"
)

var (
	// ErrInvalidInput indicates malformed or missing request fields.
	ErrInvalidInput = errors.New("userId, items[] and a non-negative total are required")
	// ErrNotFound indicates the referenced order does not exist in storage.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidUser is the authoritative negative: the identity service
	// definitely reported the user absent. The cache is never consulted for
	// this case.
	ErrInvalidUser = errors.New("invalid user")
	// ErrServiceUnavailable means validation was indeterminate: the identity
	// service was unreachable and the reference cache held no entry, so the
	// order is refused rather than created unvalidated.
	ErrServiceUnavailable = errors.New("users service unavailable and user not cached")
)

// Item is an opaque order line. Its shape is owned by callers; the service
// only stores and echoes it.
type Item map[string]any

// Order is the record owned by this service.
type Order struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Items       []Item     `json:"items"`
	Total       float64    `json:"total"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

// NewOrderInput carries the fields accepted on creation. Items and Total are
// raw so absent, null and mistyped values can be told apart during
// validation.
type NewOrderInput struct {
	UserID string          `json:"userId"`
	Items  json.RawMessage `json:"items"`
	Total  *float64        `json:"total"`
}

// Validate checks shape only; user existence is the validator's concern. It
// returns the parsed items on success.
func (in NewOrderInput) Validate() ([]Item, error) {
	if in.UserID == "" || in.Total == nil || *in.Total < 0 {
		return nil, ErrInvalidInput
	}
	var items []Item
	if err := json.Unmarshal(in.Items, &items); err != nil || items == nil {
		return nil, ErrInvalidInput
	}
	return items, nil
}

// Cancel transitions the order to cancelled and stamps the time. Cancelling
// an already-cancelled order succeeds again with a fresh timestamp; the
// operation is idempotent at the storage layer.
func (o *Order) Cancel(now time.Time) {
	o.Status = StatusCancelled
	t := now.UTC()
	o.CancelledAt = &t
}
