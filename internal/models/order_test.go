package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mealbasket/internal/constants"

	"github.com/shopspring/decimal"
)

func TestNewOrderComputesTotalFromLines(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	order, err := NewOrder(OrderDraft{
		OrderNo:         "MB1",
		UserID:          1,
		VendorID:        9,
		DeliveryAddress: "  123 St  ",
		Now:             now,
	}, []OrderLine{
		{ProductID: 1, ProductName: "A", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		{ProductID: 2, ProductName: "B", UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1},
	})
	if err != nil {
		t.Fatalf("new order failed: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want PENDING got %s", order.Status)
	}
	if !order.TotalAmount.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("total want 25.00 got %s", order.TotalAmount.String())
	}
	if !order.TotalAmount.Equal(order.ItemsTotal()) {
		t.Fatalf("total %s should equal items sum %s", order.TotalAmount.String(), order.ItemsTotal().String())
	}
	if order.DeliveryAddress != "123 St" {
		t.Fatalf("address should be trimmed, got %q", order.DeliveryAddress)
	}
	if !order.CreatedAt.Equal(now) || !order.UpdatedAt.Equal(now) {
		t.Fatalf("timestamps should be stamped with draft time")
	}
	if order.Items[0].ProductID != 1 || order.Items[1].ProductID != 2 {
		t.Fatalf("items should keep line order: %+v", order.Items)
	}
	if !order.Items[0].Subtotal.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("first subtotal want 20.00 got %s", order.Items[0].Subtotal.String())
	}
}

func TestNewOrderNoRoundingDrift(t *testing.T) {
	lines := make([]OrderLine, 0, 30)
	for i := 0; i < 30; i++ {
		lines = append(lines, OrderLine{ProductID: uint(i + 1), UnitPrice: decimal.RequireFromString("0.10"), Quantity: 3})
	}
	order, err := NewOrder(OrderDraft{OrderNo: "MB2", UserID: 1, VendorID: 1}, lines)
	if err != nil {
		t.Fatalf("new order failed: %v", err)
	}
	if order.TotalAmount.String() != "9.00" {
		t.Fatalf("total want 9.00 got %s", order.TotalAmount.String())
	}
}

func TestNewOrderRejectsInvalidLines(t *testing.T) {
	if _, err := NewOrder(OrderDraft{}, nil); !errors.Is(err, ErrOrderNoLines) {
		t.Fatalf("empty lines want ErrOrderNoLines got %v", err)
	}
	_, err := NewOrder(OrderDraft{}, []OrderLine{{ProductID: 1, UnitPrice: decimal.NewFromInt(1), Quantity: 0}})
	if !errors.Is(err, ErrOrderLineInvalid) {
		t.Fatalf("zero quantity want ErrOrderLineInvalid got %v", err)
	}
	_, err = NewOrder(OrderDraft{}, []OrderLine{{ProductID: 1, UnitPrice: decimal.NewFromInt(-1), Quantity: 1}})
	if !errors.Is(err, ErrOrderLineInvalid) {
		t.Fatalf("negative price want ErrOrderLineInvalid got %v", err)
	}
}

func TestMoneyJSON(t *testing.T) {
	m, err := NewMoneyFromString(" 12.5 ")
	if err != nil {
		t.Fatalf("parse money failed: %v", err)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal money failed: %v", err)
	}
	if string(raw) != `"12.50"` {
		t.Fatalf("money json want \"12.50\" got %s", raw)
	}
	if got := m.Mul(3).String(); got != "37.50" {
		t.Fatalf("mul want 37.50 got %s", got)
	}
	var parsed Money
	if err := json.Unmarshal([]byte(`7.255`), &parsed); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if parsed.String() != "7.26" {
		t.Fatalf("unmarshal want 7.26 got %s", parsed.String())
	}
}
