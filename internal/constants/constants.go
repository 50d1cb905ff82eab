package constants

// 订单状态常量
const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// 库存告警类型常量
const (
	AlertTypeNormal     = "NORMAL"
	AlertTypeLowStock   = "LOW_STOCK"
	AlertTypeOutOfStock = "OUT_OF_STOCK"
	AlertTypePrediction = "PREDICTION_ALERT"
)

// 库存告警提示语
const (
	AlertMessageOutOfStock       = "Product is completely out of stock"
	AlertMessageLowStock         = "Product stock is below minimum threshold"
	AlertMessageNormal           = "Stock level is normal"
	AlertMessagePredictionLow    = "Stock Prediction: Product may run out of stock within %d days"
	AlertMessagePredictionStable = "Stock Prediction: Product stock levels are stable for next %d days"
)

// 库存告警默认值
const (
	DefaultMinimumThreshold   = 10
	DefaultMaximumThreshold   = 100
	DefaultPredictionDays     = 7
	PredictionLowStockCeiling = 5
)

// 身份角色常量
const (
	RoleUser   = "user"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

// 队列名称
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型
const (
	TaskCartClear          = "cart:clear"
	TaskOrderStatusChanged = "order:status_changed"
	TaskStockMonitor       = "stock:monitor"
)

// 互斥锁 key 前缀
const (
	LockKeyCartUser = "cart:user:%d"
	LockKeyStock    = "stock:%d:%d"
)
