package events

import "testing"

func TestRoutingKeyDefault(t *testing.T) {
	if got := RoutingKey("ROUTING_KEY_TEST_UNSET", UserCreated); got != "user.created" {
		t.Fatalf("expected canonical default, got %q", got)
	}
}

func TestRoutingKeyOverride(t *testing.T) {
	t.Setenv("ROUTING_KEY_TEST_SET", "staging.user.created")
	if got := RoutingKey("ROUTING_KEY_TEST_SET", UserCreated); got != "staging.user.created" {
		t.Fatalf("expected override, got %q", got)
	}
}
