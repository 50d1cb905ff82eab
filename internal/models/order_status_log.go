package models

import "time"

// OrderStatusLog 订单状态变更记录（只追加）
type OrderStatusLog struct {
	ID           uint      `gorm:"primarykey" json:"id"`                         // 主键
	OrderID      uint      `gorm:"index;not null" json:"order_id"`               // 订单ID
	FromStatus   string    `gorm:"type:varchar(20);not null" json:"from_status"` // 变更前状态
	ToStatus     string    `gorm:"type:varchar(20);not null" json:"to_status"`   // 变更后状态
	OperatorRole string    `gorm:"type:varchar(20)" json:"operator_role"`        // 操作人角色
	OperatorID   uint      `json:"operator_id"`                                  // 操作人ID
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                      // 创建时间
}

// TableName 指定表名
func (OrderStatusLog) TableName() string {
	return "order_status_logs"
}
