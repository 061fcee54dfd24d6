package models

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func line(price string, qty int, currency string) Line {
	return Line{
		ProductID:   uuid.New(),
		ProductName: "떡볶이",
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString(price),
		Currency:    currency,
	}
}

var address = map[string]any{"recipient": "Kim", "address1": "Seoul"}

func TestNewOrder(t *testing.T) {
	o, err := NewOrder(uuid.New(), uuid.New(), address, []Line{
		line("4.50", 2, "USD"),
		line("1.25", 3, "USD"),
	}, now)
	if err != nil {
		t.Fatalf("NewOrder: %v", err)
	}
	if !o.Total.Equal(decimal.RequireFromString("12.75")) {
		t.Errorf("total = %s, want 12.75", o.Total)
	}
	if o.Status != StatusPending || o.Currency != "USD" || len(o.Items) != 2 {
		t.Errorf("unexpected order: %+v", o)
	}
	if !o.Items[0].Subtotal.Equal(decimal.RequireFromString("9")) {
		t.Errorf("subtotal = %s, want 9", o.Items[0].Subtotal)
	}
	if !regexp.MustCompile(`^ORD-20260314-[0-9A-Z]{8}$`).MatchString(o.OrderNumber) {
		t.Errorf("order number %q has the wrong shape", o.OrderNumber)
	}
}

func TestNewOrder_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		address map[string]any
		lines   []Line
	}{
		{"no lines", address, nil},
		{"no address", nil, []Line{line("1", 1, "USD")}},
		{"zero quantity", address, []Line{line("1", 0, "USD")}},
		{"mixed currency", address, []Line{line("1", 1, "USD"), line("1000", 1, "KRW")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewOrder(uuid.New(), uuid.New(), tt.address, tt.lines, now); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipping, false},
		{StatusPaid, StatusConfirmed, true},
		{StatusPaid, StatusCancelled, true},
		{StatusConfirmed, StatusShipping, true},
		{StatusConfirmed, StatusCancelled, false},
		{StatusShipping, StatusDelivered, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			o := &Order{Status: tt.from}
			err := o.TransitionTo(tt.to, now)
			if tt.ok != (err == nil) {
				t.Fatalf("TransitionTo: ok=%v, err=%v", tt.ok, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("expected ErrInvalidTransition, got %v", err)
			}
			if err == nil && o.Status != tt.to {
				t.Fatalf("status = %s", o.Status)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPaid} {
		o := &Order{Status: s}
		if err := o.Cancel(now); err != nil || o.Status != StatusCancelled {
			t.Errorf("cancel from %s: %v", s, err)
		}
	}
	for _, s := range []Status{StatusConfirmed, StatusShipping, StatusDelivered, StatusCancelled} {
		o := &Order{Status: s}
		if err := o.Cancel(now); !errors.Is(err, ErrNotCancellable) {
			t.Errorf("cancel from %s: expected ErrNotCancellable, got %v", s, err)
		}
	}
}

func TestExpired(t *testing.T) {
	o := &Order{Status: StatusPending, CreatedAt: now.Add(-31 * time.Minute)}
	if !o.Expired(now, 30*time.Minute) {
		t.Error("expected a 31 minute old pending order to be expired")
	}
	if o.Expired(now, time.Hour) {
		t.Error("order inside the timeout must not expire")
	}
	o.Status = StatusPaid
	if o.Expired(now, 30*time.Minute) {
		t.Error("paid orders never expire")
	}
}
