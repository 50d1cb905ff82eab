package models

import (
	"errors"
	"strings"
	"time"

	"github.com/mealbasket/internal/constants"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderNoLines 订单至少需要一个订单项
	ErrOrderNoLines = errors.New("order requires at least one line")
	// ErrOrderLineInvalid 订单项数量或价格非法
	ErrOrderLineInvalid = errors.New("order line is invalid")
)

// Order 订单表
// 金额在构造时由订单项汇总得出，之后只允许变更状态与备注
type Order struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                      // 主键
	OrderNo         string    `gorm:"uniqueIndex;not null" json:"order_no"`                      // 订单编号
	UserID          uint      `gorm:"index;not null" json:"user_id"`                             // 下单用户
	VendorID        uint      `gorm:"index;not null" json:"vendor_id"`                           // 所属商家
	Status          string    `gorm:"type:varchar(20);index;not null" json:"status"`             // 订单状态
	TotalAmount     Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 订单金额
	DeliveryAddress string    `gorm:"type:varchar(500);not null" json:"delivery_address"`        // 配送地址
	Phone           string    `gorm:"type:varchar(40)" json:"phone"`                             // 联系电话
	Notes           string    `gorm:"type:text" json:"notes"`                                    // 备注
	Version         int       `gorm:"not null;default:0" json:"-"`                               // 乐观锁版本
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt       time.Time `gorm:"index" json:"updated_at"`                                   // 更新时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items"` // 订单项（按下单顺序）
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderLine 构造订单项所需的商品快照
type OrderLine struct {
	ProductID   uint
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// OrderDraft 构造订单的基础信息
type OrderDraft struct {
	OrderNo         string
	UserID          uint
	VendorID        uint
	DeliveryAddress string
	Phone           string
	Notes           string
	Now             time.Time
}

// NewOrder 根据快照构造待支付订单
// 小计与总额只在这里计算一次
func NewOrder(draft OrderDraft, lines []OrderLine) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrOrderNoLines
	}
	now := draft.Now
	if now.IsZero() {
		now = time.Now()
	}
	total := decimal.Zero
	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 || line.UnitPrice.IsNegative() {
			return nil, ErrOrderLineInvalid
		}
		unitPrice := line.UnitPrice.Round(2)
		subtotal := unitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		total = total.Add(subtotal)
		items = append(items, OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitPrice:   NewMoneyFromDecimal(unitPrice),
			Quantity:    line.Quantity,
			Subtotal:    NewMoneyFromDecimal(subtotal),
			CreatedAt:   now,
		})
	}
	return &Order{
		OrderNo:         draft.OrderNo,
		UserID:          draft.UserID,
		VendorID:        draft.VendorID,
		Status:          constants.OrderStatusPending,
		TotalAmount:     NewMoneyFromDecimal(total),
		DeliveryAddress: strings.TrimSpace(draft.DeliveryAddress),
		Phone:           strings.TrimSpace(draft.Phone),
		Notes:           strings.TrimSpace(draft.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           items,
	}, nil
}

// ItemsTotal 汇总订单项小计
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	if o == nil {
		return total
	}
	for _, item := range o.Items {
		total = total.Add(item.Subtotal.Decimal)
	}
	return total
}
