package models

import "time"

// Vendor 商家表（由外部商家管理模块维护，这里只读取）
type Vendor struct {
	ID        uint      `gorm:"primarykey" json:"id"`                       // 主键
	Name      string    `gorm:"type:varchar(120);not null" json:"name"`     // 联系人名称
	Email     string    `gorm:"type:varchar(191);uniqueIndex" json:"email"` // 邮箱
	ShopName  string    `gorm:"type:varchar(120)" json:"shop_name"`         // 店铺名
	CreatedAt time.Time `gorm:"index" json:"created_at"`                    // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                 // 更新时间
}

// TableName 指定表名
func (Vendor) TableName() string {
	return "vendors"
}

// DisplayName 店铺名优先
func (v *Vendor) DisplayName() string {
	if v == nil {
		return ""
	}
	if v.ShopName != "" {
		return v.ShopName
	}
	return v.Name
}
