package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mealbasket/internal/constants"
)

func TestVendorOrderViewScopesToVendor(t *testing.T) {
	f := setupServiceTest(t)
	first := seedOrder(t, f, 7, 1, constants.OrderStatusPending)
	second := seedOrder(t, f, 8, 1, constants.OrderStatusConfirmed)
	foreign := seedOrder(t, f, 7, 2, constants.OrderStatusPending)
	view := NewVendorOrderView(f.orderRepo)
	ctx := context.Background()

	orders, total, err := view.List(ctx, vendorPrincipal(3, 1), 1, "", 1, 20)
	if err != nil || total != 2 || len(orders) != 2 {
		t.Fatalf("want 2 vendor orders got total=%d err=%v", total, err)
	}
	if orders[0].ID != second.ID || orders[1].ID != first.ID {
		t.Fatalf("orders should be newest first: %d, %d", orders[0].ID, orders[1].ID)
	}
	if len(orders[0].Items) != 1 || orders[0].Items[0].Subtotal.String() != "4.00" {
		t.Fatalf("order lines missing: %+v", orders[0])
	}

	pending, total, err := view.List(ctx, vendorPrincipal(3, 1), 1, "pending", 1, 20)
	if err != nil || total != 1 || pending[0].ID != first.ID {
		t.Fatalf("status filter unexpected total=%d err=%v", total, err)
	}
	if _, _, err := view.List(ctx, vendorPrincipal(3, 1), 1, "LOST", 1, 20); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("bad status want ErrInvalidInput got %v", err)
	}
	if _, _, err := view.List(ctx, vendorPrincipal(3, 1), 2, "", 1, 20); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign vendor list want ErrForbidden got %v", err)
	}
	if _, _, err := view.List(ctx, shopper(7), 1, "", 1, 20); !errors.Is(err, ErrForbidden) {
		t.Fatalf("shopper list want ErrForbidden got %v", err)
	}

	adminOrders, total, err := view.List(ctx, adminPrincipal(), 2, "", 1, 20)
	if err != nil || total != 1 || adminOrders[0].ID != foreign.ID {
		t.Fatalf("admin list unexpected total=%d err=%v", total, err)
	}

	got, err := view.Get(ctx, vendorPrincipal(3, 1), 1, first.ID)
	if err != nil || got.OrderNo != first.OrderNo || got.DeliveryAddress != "1 Road" {
		t.Fatalf("get unexpected: %+v err=%v", got, err)
	}
	if _, err := view.Get(ctx, vendorPrincipal(3, 1), 1, foreign.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("foreign order want ErrOrderNotFound got %v", err)
	}
}
