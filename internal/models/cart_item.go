package models

import "time"

// CartItem 购物车项
// 以 (user_id, product_id) 唯一，重复加购只累加数量；删除为物理删除
// CheckoutOrderID 非空表示该行已被订单占用，只等待清理，不再参与购物车读写
type CartItem struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                         // 主键
	UserID          uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`    // 用户ID
	ProductID       uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"` // 商品ID
	Quantity        int       `gorm:"not null" json:"quantity"`                                     // 数量
	CheckoutOrderID *uint     `gorm:"index" json:"-"`                                               // 占用该行的订单ID
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt       time.Time `json:"updated_at"`                                                   // 更新时间
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}
