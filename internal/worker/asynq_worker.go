package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mealbasket/internal/logger"
	"github.com/mealbasket/internal/provider"
	"github.com/mealbasket/internal/queue"
	"github.com/mealbasket/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCartClear, c.handleCartClear)
	mux.HandleFunc(queue.TaskOrderStatusChanged, c.handleOrderStatusChanged)
	mux.HandleFunc(queue.TaskStockMonitor, c.handleStockMonitor)
}

func (c *Consumer) handleCartClear(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_clear_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartClearPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_clear_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 || payload.OrderID == 0 {
		logger.Debugw("worker_cart_clear_skip_invalid_payload", "user_id", payload.UserID, "order_id", payload.OrderID)
		return nil
	}
	if c.CheckoutService == nil {
		logger.Warnw("worker_cart_clear_skip_checkout_service_nil", "order_id", payload.OrderID)
		return nil
	}
	removed, err := c.CheckoutService.ClearCartItems(ctx, payload.UserID, payload.OrderID)
	if err != nil {
		logger.Warnw("worker_cart_clear_failed",
			"order_id", payload.OrderID,
			"user_id", payload.UserID,
			"error", err,
		)
		return err
	}
	logger.Infow("worker_cart_clear_done",
		"order_id", payload.OrderID,
		"user_id", payload.UserID,
		"removed", removed,
	)
	return nil
}

func (c *Consumer) handleOrderStatusChanged(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_changed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusChangedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_changed_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_status_changed_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	// 通知渠道尚未接入，先落日志供下游采集
	logger.Infow("worker_order_status_changed",
		"order_id", payload.OrderID,
		"order_no", payload.OrderNo,
		"user_id", payload.UserID,
		"vendor_id", payload.VendorID,
		"from_status", payload.FromStatus,
		"to_status", payload.ToStatus,
		"operator_role", payload.OperatorRole,
	)
	return nil
}

func (c *Consumer) handleStockMonitor(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_stock_monitor_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.StockMonitorPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_stock_monitor_unmarshal_failed", "error", err)
		return err
	}
	if payload.VendorID == 0 || payload.ProductID == 0 {
		logger.Debugw("worker_stock_monitor_skip_invalid_payload", "vendor_id", payload.VendorID, "product_id", payload.ProductID)
		return nil
	}
	if c.InventoryService == nil {
		logger.Warnw("worker_stock_monitor_skip_inventory_service_nil", "product_id", payload.ProductID)
		return nil
	}
	_, err := c.InventoryService.MonitorSystem(ctx, payload.VendorID, payload.ProductID, payload.CurrentStock)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			logger.Debugw("worker_stock_monitor_skip_invalid", "product_id", payload.ProductID)
			return nil
		case errors.Is(err, service.ErrBusy):
			logger.Debugw("worker_stock_monitor_busy", "product_id", payload.ProductID)
			return err
		default:
			logger.Warnw("worker_stock_monitor_failed",
				"vendor_id", payload.VendorID,
				"product_id", payload.ProductID,
				"error", err,
			)
			return err
		}
	}
	return nil
}
