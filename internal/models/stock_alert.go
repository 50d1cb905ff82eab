package models

import (
	"fmt"
	"time"
)

// StockAlert 库存告警与预测记录
// 监控记录以 monitor_key 唯一（每个商家商品一条）；预测记录 monitor_key 为空，按次追加
type StockAlert struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                            // 主键
	VendorID         uint       `gorm:"not null;index:idx_stock_alert_vendor_product" json:"vendor_id"`  // 商家ID
	ProductID        uint       `gorm:"not null;index:idx_stock_alert_vendor_product" json:"product_id"` // 商品ID
	MonitorKey       *string    `gorm:"type:varchar(64);uniqueIndex" json:"-"`                           // 监控唯一键
	CurrentStock     int        `gorm:"not null" json:"current_stock"`                                   // 当前库存
	MinimumThreshold int        `gorm:"not null;default:10" json:"minimum_threshold"`                    // 最低阈值
	MaximumThreshold int        `gorm:"not null;default:100" json:"maximum_threshold"`                   // 最高阈值
	AlertType        string     `gorm:"type:varchar(30);not null;index" json:"alert_type"`               // 告警类型
	Message          string     `gorm:"type:varchar(255)" json:"message"`                                // 提示语
	IsActive         bool       `gorm:"not null;default:true;index" json:"is_active"`                    // 是否有效
	AlertTime        time.Time  `gorm:"index" json:"alert_time"`                                         // 告警时间
	PredictedStock   *int       `json:"predicted_stock,omitempty"`                                       // 预测库存
	PredictionDate   *time.Time `json:"prediction_date,omitempty"`                                       // 预测日期
	Confidence       *float64   `json:"confidence,omitempty"`                                            // 置信度
	CreatedAt        time.Time  `json:"created_at"`                                                      // 创建时间
	UpdatedAt        time.Time  `json:"updated_at"`                                                      // 更新时间
}

// TableName 指定表名
func (StockAlert) TableName() string {
	return "stock_alerts"
}

// StockMonitorKey 生成监控记录唯一键
func StockMonitorKey(vendorID, productID uint) string {
	return fmt.Sprintf("%d:%d", vendorID, productID)
}
