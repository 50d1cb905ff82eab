package service

import (
	"context"
	"time"

	"github.com/mealbasket/internal/auth"
	"github.com/mealbasket/internal/models"
	"github.com/mealbasket/internal/repository"
)

// VendorOrderLine 商家订单行
type VendorOrderLine struct {
	ProductID   uint         `json:"product_id"`
	ProductName string       `json:"product_name"`
	UnitPrice   models.Money `json:"unit_price"`
	Quantity    int          `json:"quantity"`
	Subtotal    models.Money `json:"subtotal"`
}

// VendorOrder 商家订单投影
type VendorOrder struct {
	ID              uint              `json:"id"`
	OrderNo         string            `json:"order_no"`
	UserID          uint              `json:"user_id"`
	TotalAmount     models.Money      `json:"total_amount"`
	Status          string            `json:"status"`
	DeliveryAddress string            `json:"delivery_address"`
	Phone           string            `json:"phone"`
	Notes           string            `json:"notes"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Items           []VendorOrderLine `json:"items"`
}

// VendorOrderView 商家订单只读视图
type VendorOrderView struct {
	orderRepo repository.OrderRepository
}

// NewVendorOrderView 创建商家订单视图
func NewVendorOrderView(orderRepo repository.OrderRepository) *VendorOrderView {
	return &VendorOrderView{orderRepo: orderRepo}
}

// List 商家订单（新到旧）
// 商家身份以登录态为准，路径中的 vendorID 只做校验
func (v *VendorOrderView) List(ctx context.Context, principal auth.Principal, vendorID uint, status string, page, pageSize int) ([]VendorOrder, int64, error) {
	if principal.UserID == 0 {
		return nil, 0, ErrUnauthenticated
	}
	if !principal.CanActForVendor(vendorID) {
		return nil, 0, ErrForbidden
	}
	scopedVendorID := vendorID
	if principal.IsVendor() {
		scopedVendorID = principal.VendorID
	}
	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		VendorID: scopedVendorID,
	}
	if status != "" {
		parsed, ok := ParseOrderStatus(status)
		if !ok {
			return nil, 0, ErrOrderStatusInvalid
		}
		filter.Status = parsed
	}
	orders, total, err := v.orderRepo.ListByVendor(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	result := make([]VendorOrder, 0, len(orders))
	for i := range orders {
		result = append(result, ToVendorOrder(&orders[i]))
	}
	return result, total, nil
}

// Get 商家订单详情
func (v *VendorOrderView) Get(ctx context.Context, principal auth.Principal, vendorID, orderID uint) (*VendorOrder, error) {
	if principal.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	if !principal.CanActForVendor(vendorID) {
		return nil, ErrForbidden
	}
	order, err := v.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil || order.VendorID != vendorID {
		return nil, ErrOrderNotFound
	}
	view := ToVendorOrder(order)
	return &view, nil
}

// ToVendorOrder 订单转商家视图
func ToVendorOrder(order *models.Order) VendorOrder {
	lines := make([]VendorOrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, VendorOrderLine{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}
	return VendorOrder{
		ID:              order.ID,
		OrderNo:         order.OrderNo,
		UserID:          order.UserID,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		DeliveryAddress: order.DeliveryAddress,
		Phone:           order.Phone,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		Items:           lines,
	}
}
