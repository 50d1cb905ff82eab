package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	VendorID   uint
	Category   string
	Search     string
	OnlyActive bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	VendorID uint
	Status   string
}

// StockAlertListFilter 查询库存告警列表的过滤条件
type StockAlertListFilter struct {
	Page       int
	PageSize   int
	VendorID   uint
	ProductID  uint
	AlertType  string
	ActiveOnly bool
	Since      *time.Time
}
