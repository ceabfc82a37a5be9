package domain

import "time"

// User is the read-only snapshot of an identity record, as carried by
// user.created / user.updated events. It may lag behind the identity
// service's store; the cache only ever reflects the most recently consumed
// event.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}
