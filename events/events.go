package events

import "os"

// Canonical routing keys for the application's topic exchange. A service may
// override any of them through the matching ROUTING_KEY_* variable so staging
// environments can run isolated vocabularies on a shared broker.
const (
	UserCreated    = "user.created"
	UserUpdated    = "user.updated"
	OrderCreated   = "order.created"
	OrderCancelled = "order.cancelled"
)

// RoutingKey resolves an overridable routing key: the value of envVar when
// set, otherwise the canonical default.
func RoutingKey(envVar, def string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return def
}

// OrderRef is the minimal payload published on order.cancelled.
type OrderRef struct {
	OrderID string `json:"orderId"`
}
