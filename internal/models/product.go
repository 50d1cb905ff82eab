package models

import "time"

// Product 商品表
type Product struct {
	ID          uint      `gorm:"primarykey" json:"id"`                               // 主键
	VendorID    uint      `gorm:"not null;index" json:"vendor_id"`                    // 所属商家
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`             // 名称
	Description string    `gorm:"type:text" json:"description"`                       // 描述
	Image       string    `gorm:"type:varchar(500)" json:"image"`                     // 图片地址
	Category    string    `gorm:"type:varchar(60);index" json:"category"`             // 分类
	Price       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"` // 单价
	Stock       int       `gorm:"not null;default:0" json:"stock"`                    // 当前库存
	InStock     bool      `gorm:"not null;default:true" json:"in_stock"`              // 是否有货
	IsActive    bool      `gorm:"not null;default:true;index" json:"is_active"`       // 是否上架
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                            // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                         // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// Purchasable 是否可下单
func (p *Product) Purchasable() bool {
	return p != nil && p.ID != 0 && p.IsActive
}
