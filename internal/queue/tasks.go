package queue

import (
	"encoding/json"

	"github.com/mealbasket/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCartClear 下单后清理购物车（同步清理失败的兜底）
	TaskCartClear = constants.TaskCartClear
	// TaskOrderStatusChanged 订单状态变更通知
	TaskOrderStatusChanged = constants.TaskOrderStatusChanged
	// TaskStockMonitor 库存巡检
	TaskStockMonitor = constants.TaskStockMonitor
)

// CartClearPayload 清理购物车任务载荷
// 按订单删除其占用的购物车项，ItemIDs 仅用于排查
type CartClearPayload struct {
	UserID  uint   `json:"user_id"`
	OrderID uint   `json:"order_id"`
	ItemIDs []uint `json:"item_ids"`
}

// OrderStatusChangedPayload 状态变更通知载荷
type OrderStatusChangedPayload struct {
	OrderID      uint   `json:"order_id"`
	OrderNo      string `json:"order_no"`
	UserID       uint   `json:"user_id"`
	VendorID     uint   `json:"vendor_id"`
	FromStatus   string `json:"from_status"`
	ToStatus     string `json:"to_status"`
	OperatorRole string `json:"operator_role"`
}

// StockMonitorPayload 库存巡检任务载荷
type StockMonitorPayload struct {
	VendorID     uint `json:"vendor_id"`
	ProductID    uint `json:"product_id"`
	CurrentStock int  `json:"current_stock"`
}

// NewCartClearTask 创建清理购物车任务
func NewCartClearTask(payload CartClearPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartClear, body), nil
}

// NewOrderStatusChangedTask 创建状态变更通知任务
func NewOrderStatusChangedTask(payload OrderStatusChangedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusChanged, body), nil
}

// NewStockMonitorTask 创建库存巡检任务
func NewStockMonitorTask(payload StockMonitorPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskStockMonitor, body), nil
}
