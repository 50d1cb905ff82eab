package queue

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/mealbasket/internal/config"
)

func TestNewCartClearTask(t *testing.T) {
	task, err := NewCartClearTask(CartClearPayload{UserID: 4, OrderID: 9, ItemIDs: []uint{1, 2}})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskCartClear {
		t.Fatalf("task type want %s got %s", TaskCartClear, task.Type())
	}
	var payload CartClearPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.UserID != 4 || len(payload.ItemIDs) != 2 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestDisabledClient(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueCartClear(CartClearPayload{UserID: 1}); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("cart clear on disabled queue want ErrQueueDisabled got %v", err)
	}
	if err := client.EnqueueOrderStatusChanged(OrderStatusChangedPayload{OrderID: 1}); err != nil {
		t.Fatalf("notification on disabled queue should be skipped: %v", err)
	}
	if err := client.EnqueueStockMonitor(StockMonitorPayload{ProductID: 1}, 0); err != nil {
		t.Fatalf("stock monitor on disabled queue should be skipped: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Port: 6380})
	if opt.Addr != "127.0.0.1:6380" {
		t.Fatalf("unexpected addr: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues["critical"] == 0 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
