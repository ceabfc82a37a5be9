package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func floatPtr(f float64) *float64 { return &f }

func TestNewOrderInputValidate(t *testing.T) {
	valid := NewOrderInput{
		UserID: "u1",
		Items:  json.RawMessage(`[{"sku":"S1","qty":2}]`),
		Total:  floatPtr(19.9),
	}
	items, err := valid.Validate()
	if err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
	if len(items) != 1 || items[0]["sku"] != "S1" {
		t.Fatalf("unexpected items: %#v", items)
	}

	cases := []struct {
		name string
		in   NewOrderInput
	}{
		{"missing user", NewOrderInput{Items: json.RawMessage(`[]`), Total: floatPtr(1)}},
		{"missing total", NewOrderInput{UserID: "u1", Items: json.RawMessage(`[]`)}},
		{"negative total", NewOrderInput{UserID: "u1", Items: json.RawMessage(`[]`), Total: floatPtr(-1)}},
		{"items not an array", NewOrderInput{UserID: "u1", Items: json.RawMessage(`{"sku":"S1"}`), Total: floatPtr(1)}},
		{"items null", NewOrderInput{UserID: "u1", Items: json.RawMessage(`null`), Total: floatPtr(1)}},
		{"items absent", NewOrderInput{UserID: "u1", Total: floatPtr(1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.in.Validate(); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	empty := NewOrderInput{UserID: "u1", Items: json.RawMessage(`[]`), Total: floatPtr(0)}
	if _, err := empty.Validate(); err != nil {
		t.Fatalf("empty items with zero total should be accepted: %v", err)
	}
}

func TestOrderCancelIsTerminal(t *testing.T) {
	o := Order{ID: "o1", Status: StatusCreated}
	now := time.Now()
	o.Cancel(now)

	if o.Status != StatusCancelled {
		t.Fatalf("expected cancelled, got %s", o.Status)
	}
	if o.CancelledAt == nil || !o.CancelledAt.Equal(now.UTC()) {
		t.Fatalf("cancelledAt not stamped: %v", o.CancelledAt)
	}

	// Re-cancelling succeeds again with a fresh timestamp.
	later := now.Add(time.Minute)
	o.Cancel(later)
	if o.Status != StatusCancelled || !o.CancelledAt.Equal(later.UTC()) {
		t.Fatalf("re-cancel did not refresh: %s %v", o.Status, o.CancelledAt)
	}
}
